package entities

// Classes is the fixed class enumeration in display order.
var Classes = []string{"Pre", "Nur", "LKG", "UKG", "1", "2", "3", "4", "5", "6", "7", "8"}

var classNames = map[string]string{
	"Pre": "Pre-School",
	"Nur": "Nursery",
	"LKG": "LKG",
	"UKG": "UKG",
	"1":   "Class 1",
	"2":   "Class 2",
	"3":   "Class 3",
	"4":   "Class 4",
	"5":   "Class 5",
	"6":   "Class 6",
	"7":   "Class 7",
	"8":   "Class 8",
}

// IsValidClass reports whether label belongs to the class enumeration.
func IsValidClass(label string) bool {
	_, ok := classNames[label]
	return ok
}

// ClassName returns the display name for a class label, or the label itself
// when it is not part of the enumeration.
func ClassName(label string) string {
	if name, ok := classNames[label]; ok {
		return name
	}
	return label
}

// ClassIndex returns the position of label in Classes, or len(Classes) for
// unknown labels so they sort last.
func ClassIndex(label string) int {
	for i, c := range Classes {
		if c == label {
			return i
		}
	}
	return len(Classes)
}
