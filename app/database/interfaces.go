package database

type RunRepository interface {
	RecordRun(run Run) error
	GetLastRun(source string) (*Run, error)
	GetRunCount(source string) (int, error)
}
