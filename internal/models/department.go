package models

// Department is a French department quiz subject.
type Department struct {
	ID         int64
	Name       string
	Number     string // department number, e.g. "01" or "2A"
	Region     string
	Prefecture string
}
