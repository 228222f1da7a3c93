// Package render turns a StructuredResume into plain text, a paginated PDF
// and a styled DOCX. All three renderings carry the same content and omit
// the same empty sections.
package render

import (
	"strings"

	"github.com/fmuoria/resume-reviser/internal/models"
)

// Section titles, shared by every rendering
const (
	TitleSummary    = "SUMMARY"
	TitleSkills     = "SKILLS"
	TitleExperience = "PROFESSIONAL EXPERIENCE"
	TitleEducation  = "EDUCATION"
)

// Bullet prefixes an achievement line
const Bullet = "•"

type sectionKind int

const (
	sectionSummary sectionKind = iota
	sectionSkills
	sectionExperience
	sectionEducation
)

type section struct {
	kind  sectionKind
	title string
}

// sectionsOf lists the sections that have content, in display order
func sectionsOf(r models.StructuredResume) []section {
	var out []section
	if strings.TrimSpace(r.Summary) != "" {
		out = append(out, section{sectionSummary, TitleSummary})
	}
	if hasSkillLines(r) {
		out = append(out, section{sectionSkills, TitleSkills})
	}
	if len(r.Experience) > 0 {
		out = append(out, section{sectionExperience, TitleExperience})
	}
	if len(r.Education) > 0 {
		out = append(out, section{sectionEducation, TitleEducation})
	}
	return out
}

func hasSkillLines(r models.StructuredResume) bool {
	for _, cat := range r.Skills {
		if SkillsLine(cat) != "" {
			return true
		}
	}
	return false
}

// SkillsLine renders one category as "Category: skill1, skill2"
func SkillsLine(cat models.SkillCategory) string {
	return models.JoinNonEmpty(": ", cat.Category, strings.Join(cat.Skills, ", "))
}

// ExperienceHeader renders "Role, Company | Location | Dates" without empty parts
func ExperienceHeader(exp models.Experience) string {
	return models.JoinNonEmpty(" | ", models.JoinNonEmpty(", ", exp.Role, exp.Company), exp.Location, exp.Dates)
}

// EducationLine renders "Degree, Institution | Location | Date" without empty parts
func EducationLine(edu models.Education) string {
	return models.JoinNonEmpty(" | ", models.JoinNonEmpty(", ", edu.Degree, edu.Institution), edu.Location, edu.GraduationDate)
}

// PlainText renders the resume as plain text for the clipboard
func PlainText(r models.StructuredResume) string {
	var sb strings.Builder

	sb.WriteString(strings.TrimSpace(r.Contact.Name))
	sb.WriteString("\n")
	if line := r.Contact.ContactLine(); line != "" {
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	for _, s := range sectionsOf(r) {
		sb.WriteString("\n")
		sb.WriteString(s.title)
		sb.WriteString("\n")

		switch s.kind {
		case sectionSummary:
			sb.WriteString(strings.TrimSpace(r.Summary))
			sb.WriteString("\n")
		case sectionSkills:
			for _, cat := range r.Skills {
				if line := SkillsLine(cat); line != "" {
					sb.WriteString(line)
					sb.WriteString("\n")
				}
			}
		case sectionExperience:
			for i, exp := range r.Experience {
				if i > 0 {
					sb.WriteString("\n")
				}
				sb.WriteString(ExperienceHeader(exp))
				sb.WriteString("\n")
				for _, ach := range exp.Achievements {
					sb.WriteString(Bullet + " " + ach + "\n")
				}
			}
		case sectionEducation:
			for _, edu := range r.Education {
				sb.WriteString(EducationLine(edu))
				sb.WriteString("\n")
			}
		}
	}

	return sb.String()
}
