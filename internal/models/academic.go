package models

import "time"

type Degree struct {
	DegreeID   string `gorm:"column:degreeId;primaryKey" json:"degreeId"`
	DegreeName string `gorm:"column:degreeName;not null" json:"degreeName"`
}

func (Degree) TableName() string { return "Degree" }

type SchoolYear struct {
	YearID   string  `gorm:"column:yearId;primaryKey" json:"yearId"`
	YearName string  `gorm:"column:yearName;not null" json:"yearName"`
	DegreeID *string `gorm:"column:degreeId" json:"degreeId"`
	BranchID string  `gorm:"column:branchId;index" json:"branchId"`

	Degree *Degree `gorm:"foreignKey:DegreeID;references:DegreeID" json:"Degree,omitempty"`
}

func (SchoolYear) TableName() string { return "SchoolYear" }

type Section struct {
	SectionID   string  `gorm:"column:sectionId;primaryKey" json:"sectionId"`
	SectionName string  `gorm:"column:sectionName;not null" json:"sectionName"`
	YearID      *string `gorm:"column:yearId" json:"yearId"`

	SchoolYear *SchoolYear `gorm:"foreignKey:YearID;references:YearID" json:"SchoolYear,omitempty"`
}

func (Section) TableName() string { return "Section" }

type GroupType struct {
	TypeID   string `gorm:"column:typeId;primaryKey" json:"typeId"`
	TypeName string `gorm:"column:typeName;not null" json:"typeName"`
}

func (GroupType) TableName() string { return "GroupType" }

// Group is a teaching group. GroupPath points at the roster workbook of the
// group, relative to the roster directory.
type Group struct {
	GroupID   string  `gorm:"column:groupId;primaryKey" json:"groupId"`
	GroupName string  `gorm:"column:groupName;not null" json:"groupName"`
	GroupPath string  `gorm:"column:group_path" json:"group_path"`
	SectionID *string `gorm:"column:sectionId" json:"sectionId"`
	TypeID    *string `gorm:"column:typeId" json:"typeId"`

	Section   *Section   `gorm:"foreignKey:SectionID;references:SectionID" json:"Section,omitempty"`
	GroupType *GroupType `gorm:"foreignKey:TypeID;references:TypeID" json:"GroupType,omitempty"`
}

func (Group) TableName() string { return "Group" }

type Semester struct {
	SemesterID string    `gorm:"column:SemesterId;primaryKey" json:"SemesterId"`
	Label      string    `gorm:"column:label;not null" json:"label"`
	StartDate  time.Time `gorm:"column:StartDate" json:"StartDate"`
}

func (Semester) TableName() string { return "Semestre" }

type Module struct {
	ModuleID   string  `gorm:"column:moduleId;primaryKey" json:"moduleId"`
	ModuleName string  `gorm:"column:moduleName;not null" json:"moduleName"`
	SemesterID *string `gorm:"column:SemesterId" json:"SemesterId"`
	YearID     *string `gorm:"column:yearId" json:"yearId"`

	Semester   *Semester   `gorm:"foreignKey:SemesterID;references:SemesterID" json:"Semester,omitempty"`
	SchoolYear *SchoolYear `gorm:"foreignKey:YearID;references:YearID" json:"SchoolYear,omitempty"`
}

func (Module) TableName() string { return "Module" }

type Day struct {
	DayID   int    `gorm:"column:dayId;primaryKey;autoIncrement:false" json:"dayId"`
	DayName string `gorm:"column:dayName;not null" json:"dayName"`
}

func (Day) TableName() string { return "Day" }

type Classroom struct {
	ClassID     string `gorm:"column:classId;primaryKey" json:"classId"`
	ClassNumber string `gorm:"column:ClassNumber" json:"ClassNumber"`
	Location    string `gorm:"column:Location" json:"Location"`
}

func (Classroom) TableName() string { return "Classroom" }
