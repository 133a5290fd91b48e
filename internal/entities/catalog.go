package entities

import "time"

type School struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SchoolID  string    `gorm:"column:school_id;uniqueIndex;size:50" json:"school_id"`
	Name      string    `gorm:"size:255" json:"name"`
	City      string    `gorm:"size:255" json:"city"`
	Contact   string    `gorm:"size:50" json:"contact"`
	Email     string    `gorm:"size:255" json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (School) TableName() string {
	return "schools"
}

type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SubID     string    `gorm:"column:subid;size:50" json:"subid"`
	Name      string    `gorm:"size:255" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (Subject) TableName() string {
	return "subjects"
}

type Publication struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PubID     string    `gorm:"column:pubid;uniqueIndex;size:50" json:"pubid"`
	Name      string    `gorm:"size:255" json:"name"`
	City      string    `gorm:"size:255" json:"city"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Publication) TableName() string {
	return "publications"
}

// BookName is a catalog title. CompanyID references the owning publication.
type BookName struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookNameID string    `gorm:"column:book_name_id;uniqueIndex;size:50" json:"book_name_id"`
	Name       string    `gorm:"size:255" json:"name"`
	SubjectID  uint      `gorm:"index" json:"subject_id"`
	CompanyID  uint      `gorm:"index" json:"company_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Populated by joins on read.
	SubjectName     string `gorm:"->;-:migration" json:"subject_name"`
	PublicationName string `gorm:"->;-:migration" json:"publication_name"`
}

func (BookName) TableName() string {
	return "booknames"
}

// BookEntry is the per-class price/quantity variant of a BookName.
// BookNameID references booknames.id, not the external book_name_id code.
type BookEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookNameID uint      `gorm:"index" json:"book_name_id"`
	Class      string    `gorm:"size:10;index" json:"class"`
	Price      float64   `json:"price"`
	Quantity   int       `json:"quantity"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	BookName        string `gorm:"->;-:migration" json:"book_name,omitempty"`
	SubjectName     string `gorm:"->;-:migration" json:"subject_name,omitempty"`
	PublicationName string `gorm:"->;-:migration" json:"publication_name,omitempty"`
}

func (BookEntry) TableName() string {
	return "books"
}
