package models

import "time"

// SessionStructure is a recurring teaching slot in a teacher's timetable.
type SessionStructure struct {
	ID        string  `gorm:"column:Session_structure_id;primaryKey" json:"Session_structure_id"`
	ModuleID  string  `gorm:"column:moduleId;not null" json:"moduleId"`
	ClassID   *string `gorm:"column:classId" json:"classId"`
	GroupID   string  `gorm:"column:groupId" json:"groupId"`
	TeacherID string  `gorm:"column:teacherId;not null;index" json:"teacherId"`
	DayID     int     `gorm:"column:dayId" json:"dayId"`
	SlotIndex int     `gorm:"column:slotIndex" json:"slotIndex"`
	TypeID    *string `gorm:"column:typeId" json:"typeId"`

	Day       *Day       `gorm:"foreignKey:DayID;references:DayID" json:"Day,omitempty"`
	Module    *Module    `gorm:"foreignKey:ModuleID;references:ModuleID" json:"Module,omitempty"`
	Group     *Group     `gorm:"foreignKey:GroupID;references:GroupID" json:"Group,omitempty"`
	GroupType *GroupType `gorm:"foreignKey:TypeID;references:TypeID" json:"GroupType,omitempty"`
	Classroom *Classroom `gorm:"foreignKey:ClassID;references:ClassID" json:"Classroom,omitempty"`
}

func (SessionStructure) TableName() string { return "Session_structure" }

// Session is one dated occurrence of a SessionStructure.
type Session struct {
	SessionID     string    `gorm:"column:sessionId;primaryKey" json:"sessionId"`
	SessionNumber int       `gorm:"column:sessionNumber;not null" json:"sessionNumber"`
	Date          time.Time `gorm:"column:date;not null" json:"date"`
	Confirm       bool      `gorm:"column:confirm;not null;default:false" json:"confirm"`
	ModuleID      string    `gorm:"column:moduleId;not null;index:idx_session_module_group" json:"moduleId"`
	GroupID       string    `gorm:"column:groupId;not null;index:idx_session_module_group" json:"groupId"`
	TeacherID     string    `gorm:"column:teacherId;not null;index" json:"teacherId"`
	ClassID       *string   `gorm:"column:classId" json:"classId"`
	DayID         int       `gorm:"column:dayId" json:"dayId"`

	Module    *Module    `gorm:"foreignKey:ModuleID;references:ModuleID" json:"Module,omitempty"`
	Group     *Group     `gorm:"foreignKey:GroupID;references:GroupID" json:"Group,omitempty"`
	Classroom *Classroom `gorm:"foreignKey:ClassID;references:ClassID" json:"Classroom,omitempty"`
	Day       *Day       `gorm:"foreignKey:DayID;references:DayID" json:"Day,omitempty"`
}

func (Session) TableName() string { return "Session" }

// Presence is the ternary attendance value stored per student and session.
type Presence float64

const (
	Absent    Presence = 0
	Justified Presence = 0.5
	Present   Presence = 1
)

func (p Presence) String() string {
	switch p {
	case Present:
		return "present"
	case Justified:
		return "justified"
	default:
		return "absent"
	}
}

// Attendance holds one presence mark. A (session, student) pair has at most
// one row.
type Attendance struct {
	ID        uint     `gorm:"primaryKey" json:"-"`
	SessionID string   `gorm:"column:sessionId;not null;uniqueIndex:idx_attendance_session_student" json:"sessionId"`
	Matricule string   `gorm:"column:matricule;not null;uniqueIndex:idx_attendance_session_student" json:"matricule"`
	Presence  Presence `gorm:"column:presence;not null" json:"presence"`

	Session *Session `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnDelete:RESTRICT" json:"-"`
	Student *Student `gorm:"foreignKey:Matricule;references:Matricule" json:"Student,omitempty"`
}

func (Attendance) TableName() string { return "Attendance" }
