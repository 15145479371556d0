package workflow

import "errors"

// Terminal selection failures. These abort a run before any draft is
// generated; everything else in the pipeline degrades to a safe default.
var (
	// ErrNoContent means both fetch lists came back empty.
	ErrNoContent = errors.New("no new reports or videos available")
	// ErrReportNotFound means an explicitly requested report id was absent
	// from today's fetch and the full history.
	ErrReportNotFound = errors.New("requested report not found")
	// ErrNotImplemented marks declared routines whose policies are not
	// built yet.
	ErrNotImplemented = errors.New("routine not implemented")
)

// User-facing Korean status messages. These are shown on the PB dashboard;
// logs carry the English errors above.
const (
	msgNoContent      = "오늘의 루틴을 생성할 새로운 리서치나 영상이 없습니다."
	msgReportNotFound = "요청하신 리포트를 찾을 수 없습니다."
	msgStoreWriteFail = "리포트 이력 저장에 실패했습니다. 이번 실행 결과에는 영향이 없습니다."
)
