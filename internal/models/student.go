package models

// Student represents a learner registered in the training program.
// Records are never physically removed; IsDeleted marks logical deletion.
type Student struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name" validate:"required"`
	Furigana  string `db:"furigana" json:"furigana" validate:"required"`
	Nickname  string `db:"nickname" json:"nickname"`
	Email     string `db:"email" json:"email" validate:"required,email"`
	City      string `db:"city" json:"city" validate:"required"`
	Age       int    `db:"age" json:"age" validate:"gte=10,lte=100"`
	Gender    string `db:"gender" json:"gender" validate:"required"`
	Remark    string `db:"remark" json:"remark"`
	IsDeleted bool   `db:"is_deleted" json:"is_deleted"`
}

// StudentSearchCondition encapsulates allowed search parameters for listing
// students. Present fields are combined with AND; empty fields are ignored.
// Name matches partially, City and Gender match exactly.
type StudentSearchCondition struct {
	Name   string `form:"name" json:"name"`
	City   string `form:"city" json:"city"`
	Gender string `form:"gender" json:"gender"`
}

// IsEmpty reports whether no condition field is set.
func (c StudentSearchCondition) IsEmpty() bool {
	return c.Name == "" && c.City == "" && c.Gender == ""
}

// StudentDetail is the aggregate exchanged with the HTTP boundary: one student
// plus the ordered list of that student's course enrollments. It is assembled
// on read and decomposed on write, never persisted as such.
type StudentDetail struct {
	Student     Student            `json:"student"`
	Enrollments []CourseEnrollment `json:"enrollments" validate:"dive"`
}
