package models

import "strings"

// Teacher is the profile row behind an authenticated user.
type Teacher struct {
	TeacherID    string `gorm:"column:teacherId;primaryKey" json:"teacherId"`
	Name         string `gorm:"column:name" json:"name"`
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash" json:"-"`
	BranchID     string `gorm:"column:branchId" json:"branchId"`
}

func (Teacher) TableName() string { return "Teacher" }

type Student struct {
	Matricule string `gorm:"column:matricule;primaryKey" json:"matricule"`
	FirstName string `gorm:"column:firstName" json:"firstName"`
	LastName  string `gorm:"column:lastName" json:"lastName"`
}

func (Student) TableName() string { return "Student" }

func (s Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

// StudentGroup is one roster entry. Rosters are read in primary key order,
// which is insertion order.
type StudentGroup struct {
	ID        uint   `gorm:"primaryKey" json:"-"`
	Matricule string `gorm:"column:matricule;not null;uniqueIndex:idx_student_group" json:"matricule"`
	GroupID   string `gorm:"column:groupId;not null;uniqueIndex:idx_student_group" json:"groupId"`

	Student *Student `gorm:"foreignKey:Matricule;references:Matricule;constraint:OnDelete:CASCADE" json:"Student,omitempty"`
}

func (StudentGroup) TableName() string { return "StudentGroup" }

func (sg StudentGroup) Name() string {
	if sg.Student == nil {
		return ""
	}
	return sg.Student.FullName()
}

type TeacherGroup struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	TeacherID  string `gorm:"column:teacherId;not null;index" json:"teacherId"`
	GroupID    string `gorm:"column:groupId;not null" json:"groupId"`
	SemesterID string `gorm:"column:semestreId;index" json:"semestreId"`

	Group    *Group    `gorm:"foreignKey:GroupID;references:GroupID" json:"Group,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"Semestre,omitempty"`
}

func (TeacherGroup) TableName() string { return "Teacher_group" }
