package entities

import "time"

// Booklist is the container of required books for one school, class and session.
// SchoolID references schools.id.
type Booklist struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	SchoolID      uint      `gorm:"index" json:"school_id"`
	Class         string    `gorm:"size:10" json:"class"`
	ExpectedCount int       `json:"expected_count"`
	SellCount     int       `json:"sell_count"`
	Session       int       `gorm:"index" json:"session"`
	CreatedAt     time.Time `json:"created_at"`
}

func (Booklist) TableName() string {
	return "booklist"
}

// BooklistItem attaches a book entry (books.id) to a booklist.
type BooklistItem struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	BookID     uint      `gorm:"index" json:"book_id"`
	BooklistID uint      `gorm:"index" json:"booklist_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (BooklistItem) TableName() string {
	return "booklist_items"
}

// BooklistItemView is a booklist item joined with its book, subject,
// publication and booklist class.
type BooklistItemView struct {
	ID              uint      `json:"id"`
	BookID          uint      `json:"book_id"`
	BooklistID      uint      `json:"booklist_id"`
	CreatedAt       time.Time `json:"created_at"`
	BookName        string    `json:"book_name"`
	SubjectName     string    `json:"subject_name"`
	PublicationName string    `json:"publication_name"`
	BookPrice       float64   `json:"book_price"`
	Class           string    `json:"class"`
}

// BooklistSessions is the session overview of one school.
type BooklistSessions struct {
	Sessions       []int      `json:"sessions"`
	CurrentSession int        `json:"currentSession"`
	Booklists      []Booklist `json:"booklists"`
}

// ClassGroup groups booklist items under one class label.
type ClassGroup struct {
	Class string             `json:"class"`
	Name  string             `json:"name"`
	Items []BooklistItemView `json:"books"`
}

// GroupItemsByClass returns one group per enumerated class, in enumeration order.
// Items with unknown classes are dropped.
func GroupItemsByClass(items []BooklistItemView) []ClassGroup {
	groups := make([]ClassGroup, len(Classes))
	for i, c := range Classes {
		groups[i] = ClassGroup{Class: c, Name: ClassName(c), Items: []BooklistItemView{}}
	}
	for _, item := range items {
		idx := ClassIndex(item.Class)
		if idx < len(groups) {
			groups[idx].Items = append(groups[idx].Items, item)
		}
	}
	return groups
}
