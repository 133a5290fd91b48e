package workflow

import (
	"errors"
	"slices"
	"strconv"

	"github.com/Sa-tya/shelf-manager/internal/entities"
)

var (
	ErrIncompleteEntry = errors.New("please fill all required fields")
	ErrSubjectConsumed = errors.New("a book of this subject is already staged")
	ErrNoPrices        = errors.New("no prices found for the given book")
	ErrNothingStaged   = errors.New("no books staged")
	ErrCommitFailed    = errors.New("failed to save books")
)

// StagedBook is one title staged for one class.
type StagedBook struct {
	Book       entities.BookName `json:"book"`
	Class      string            `json:"class"`
	Price      float64           `json:"price"`
	PriceKnown bool              `json:"price_known"`
}

// DisplayPrice formats the price, or "N/A" when the class has no entry.
func (b StagedBook) DisplayPrice() string {
	if !b.PriceKnown {
		return "N/A"
	}
	return strconv.FormatFloat(b.Price, 'f', -1, 64)
}

// StagedClass is one class of a build with the titles staged for it.
type StagedClass struct {
	Class string       `json:"class"`
	Name  string       `json:"name"`
	Books []StagedBook `json:"books"`
}

// State is the in-memory build. The zero value is an empty build.
type State struct {
	Subjects     []entities.Subject
	Publications []entities.Publication
	Books        []entities.BookName

	SelectedSubject     uint
	SelectedPublication uint
	SelectedBook        uint
	SelectedClasses     []string

	ConsumedSubjects map[uint]bool
	// Simulated is kept in class enumeration order.
	Simulated []StagedClass
}

func (s State) clone() State {
	out := s
	out.SelectedClasses = slices.Clone(s.SelectedClasses)
	out.ConsumedSubjects = make(map[uint]bool, len(s.ConsumedSubjects))
	for id, v := range s.ConsumedSubjects {
		if v {
			out.ConsumedSubjects[id] = true
		}
	}
	out.Simulated = make([]StagedClass, len(s.Simulated))
	for i, sc := range s.Simulated {
		sc.Books = slices.Clone(sc.Books)
		out.Simulated[i] = sc
	}
	return out
}

// SelectSubject changes the subject filter and clears the selected title.
func SelectSubject(s State, subjectID uint) State {
	s = s.clone()
	s.SelectedSubject = subjectID
	s.SelectedBook = 0
	return s
}

// SelectPublication changes the publication filter and clears the selected title.
func SelectPublication(s State, publicationID uint) State {
	s = s.clone()
	s.SelectedPublication = publicationID
	s.SelectedBook = 0
	return s
}

// SelectBook sets the title to stage; PendingEntry validates it.
func SelectBook(s State, bookID uint) State {
	s = s.clone()
	s.SelectedBook = bookID
	return s
}

// SelectClasses keeps the valid labels, without duplicates, in enumeration order.
func SelectClasses(s State, classes []string) State {
	s = s.clone()
	s.SelectedClasses = normalizeClasses(classes)
	return s
}

func normalizeClasses(classes []string) []string {
	seen := make(map[string]bool, len(classes))
	out := []string{}
	for _, c := range classes {
		if entities.IsValidClass(c) && !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b string) int {
		return entities.ClassIndex(a) - entities.ClassIndex(b)
	})
	return out
}

// WithBooks replaces the title cache after a refetch, clears the selected
// title and auto-selects when exactly one title remains available.
func WithBooks(s State, books []entities.BookName) State {
	s = s.clone()
	s.Books = slices.Clone(books)
	s.SelectedBook = 0
	return autoSelect(s)
}

func autoSelect(s State) State {
	if avail := AvailableBooks(s); len(avail) == 1 {
		s.SelectedBook = avail[0].ID
	}
	return s
}

func isStaged(s State, bookID uint) bool {
	for _, sc := range s.Simulated {
		for _, b := range sc.Books {
			if b.Book.ID == bookID {
				return true
			}
		}
	}
	return false
}

// AvailableBooks lists the cached titles that can still be staged: not staged
// in any class, subject not consumed, matching the selected filters.
func AvailableBooks(s State) []entities.BookName {
	out := []entities.BookName{}
	for _, b := range s.Books {
		if s.SelectedSubject != 0 && b.SubjectID != s.SelectedSubject {
			continue
		}
		if s.SelectedPublication != 0 && b.CompanyID != s.SelectedPublication {
			continue
		}
		if s.ConsumedSubjects[b.SubjectID] || isStaged(s, b.ID) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// RemainingSubjects lists subjects with no staged title.
func RemainingSubjects(s State) []entities.Subject {
	out := []entities.Subject{}
	for _, sub := range s.Subjects {
		if !s.ConsumedSubjects[sub.ID] {
			out = append(out, sub)
		}
	}
	return out
}

// PendingEntry validates the current selection and returns the title and
// classes Stage would use.
func PendingEntry(s State) (entities.BookName, []string, error) {
	classes := normalizeClasses(s.SelectedClasses)
	if s.SelectedBook == 0 || len(classes) == 0 {
		return entities.BookName{}, nil, ErrIncompleteEntry
	}

	idx := slices.IndexFunc(s.Books, func(b entities.BookName) bool { return b.ID == s.SelectedBook })
	if idx < 0 {
		return entities.BookName{}, nil, ErrIncompleteEntry
	}
	book := s.Books[idx]
	if s.ConsumedSubjects[book.SubjectID] || isStaged(s, book.ID) {
		return entities.BookName{}, nil, ErrSubjectConsumed
	}
	return book, classes, nil
}

// Stage adds the selected title to every selected class, priced from prices
// (class to price). Classes missing from prices get 0 and PriceKnown=false.
// The title's subject is consumed and the selection is cleared.
func Stage(s State, prices map[string]float64) (State, error) {
	book, classes, err := PendingEntry(s)
	if err != nil {
		return s, err
	}

	s = s.clone()
	s.ConsumedSubjects[book.SubjectID] = true

	for _, class := range classes {
		price, known := prices[class]
		staged := StagedBook{Book: book, Class: class, Price: price, PriceKnown: known}

		i := slices.IndexFunc(s.Simulated, func(sc StagedClass) bool { return sc.Class == class })
		if i >= 0 {
			s.Simulated[i].Books = append(s.Simulated[i].Books, staged)
			continue
		}
		s.Simulated = append(s.Simulated, StagedClass{
			Class: class,
			Name:  entities.ClassName(class),
			Books: []StagedBook{staged},
		})
	}
	slices.SortStableFunc(s.Simulated, func(a, b StagedClass) int {
		return entities.ClassIndex(a.Class) - entities.ClassIndex(b.Class)
	})

	s.SelectedSubject = 0
	s.SelectedPublication = 0
	s.SelectedBook = 0
	s.SelectedClasses = nil
	return autoSelect(s), nil
}

// Unstage removes one title from one class and drops the class when emptied.
// The title's subject is released once no class still holds a title of it.
func Unstage(s State, class string, bookID uint) State {
	s = s.clone()

	var subjectID uint
	var found bool
	kept := s.Simulated[:0]
	for _, sc := range s.Simulated {
		if sc.Class == class {
			books := sc.Books[:0]
			for _, b := range sc.Books {
				if b.Book.ID == bookID && !found {
					subjectID, found = b.Book.SubjectID, true
					continue
				}
				books = append(books, b)
			}
			sc.Books = books
		}
		if len(sc.Books) > 0 {
			kept = append(kept, sc)
		}
	}
	s.Simulated = kept

	if found && !subjectStaged(s, subjectID) {
		delete(s.ConsumedSubjects, subjectID)
	}
	return autoSelect(s)
}

func subjectStaged(s State, subjectID uint) bool {
	for _, sc := range s.Simulated {
		for _, b := range sc.Books {
			if b.Book.SubjectID == subjectID {
				return true
			}
		}
	}
	return false
}

// Reset clears selections and the staged build, keeping the catalog caches.
func Reset(s State) State {
	return State{
		Subjects:     slices.Clone(s.Subjects),
		Publications: slices.Clone(s.Publications),
		Books:        slices.Clone(s.Books),
	}
}

// StagedCount is the number of (class, title) pairs staged.
func StagedCount(s State) int {
	n := 0
	for _, sc := range s.Simulated {
		n += len(sc.Books)
	}
	return n
}
