package catalog

import "strings"

// Course is an entry of the course directory.
type Course struct {
	ID          string `json:"course_id"`
	Name        string `json:"course_name"`
	File        string `json:"course_file"`
	Description string `json:"course_description"`
}

var categories = map[string]string{
	"ENW": "English",
	"SSL": "Security",
	"HOM": "Management",
	"HRM": "Human Resources",
	"MKT": "Marketing",
	"PRP": "Programming",
	"ITE": "IT",
	"WED": "Web Design",
	"SWE": "Software",
	"OBE": "Business",
	"IMC": "Communication",
	"SSC": "Cyber Security",
	"BDI": "Data Analysis",
	"AIL": "AI",
	"CRY": "Cryptography",
	"MSM": "Media",
	"PRC": "Process",
	"DWP": "Web Development",
	"WDU": "UI Design",
	"PMG": "Project Management",
	"EPE": "Economics",
	"ADS": "Systems Analysis",
	"ITA": "IT Analysis",
	"MCO": "Communication",
	"VNR": "Vietnam",
}

// Category maps the three-letter course name prefix to a subject area.
func (c Course) Category() string {
	if len(c.Name) >= 3 {
		if cat, ok := categories[c.Name[:3]]; ok {
			return cat
		}
	}
	return "Other"
}

// FilterCourses returns the courses whose name, id or description contains
// term, case-insensitively. An empty term returns all courses.
func FilterCourses(courses []Course, term string) []Course {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return courses
	}
	var out []Course
	for _, c := range courses {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.ID), term) ||
			strings.Contains(strings.ToLower(c.Description), term) {
			out = append(out, c)
		}
	}
	return out
}
