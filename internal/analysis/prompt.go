package analysis

import (
	"strings"

	"github.com/fmuoria/resume-reviser/internal/llm"
)

const promptTemplate = `
As an expert ATS Optimization Specialist and professional resume writer, your primary goal is to revise the provided resume to achieve an ATS match score of over 85% against the target job description. You will deconstruct the original resume and the job description, then construct a new, optimized resume within a structured JSON format.

Current Resume:
---
{{RESUME}}
---

Target Job Description:
---
{{JOB_DESCRIPTION}}
---

Follow these instructions meticulously to generate the content for the JSON fields:

1.  **originalAtsScore & revisedAtsScore**:
    *   Calculate a score from 0-100 representing how well the resume aligns with the job description based on keywords, skills, and experience.
    *   The 'originalAtsScore' is for the provided resume.
    *   The 'revisedAtsScore' is for the resume you are creating. This score MUST be significantly higher, reflecting the goal of 85%+.

2.  **feedback**:
    *   Provide a concise, bulleted list (using markdown like '*') of the key changes you made and why. Be specific. For example: "* Infused 'Azure DevOps' and 'CI/CD pipeline' throughout the experience section to align with core job requirements." or "* Rephrased achievements to include quantifiable metrics like 'a 25% increase in efficiency'."

3.  **revisedResume (Structured JSON Object)**:
    *   **contact**: Parse the name, email, phone, location, and LinkedIn from the original resume. If a field is not present, omit it.
    *   **summary**: Write a concise, powerful summary (2-4 sentences) at the top, tailored to the job description and packed with relevant keywords from the JD.
    *   **skills**: Create an array of skill objects. Each object must have a 'category' (e.g., "Programming Languages", "Cloud Technologies") and a 'skills' array containing specific skills from the job description. This categorized format is crucial for readability and ATS scoring.
    *   **experience**:
        *   For each job entry from the original resume, create a corresponding object.
        *   **You MUST NOT change the employment dates (dates field) or duration for any role.** The timeline must remain exactly as in the original.
        *   Rewrite the bullet points ('achievements') to highlight quantifiable results. **Using metrics is mandatory.** If the original resume lacks metrics, infer realistic and impactful metrics (e.g., "streamlined processes, reducing deployment time by 30%").
        *   Use strong action verbs (e.g., Spearheaded, Architected, Optimized, Delivered).
        *   **Perform intelligent technology substitution**. If the resume mentions a technology (e.g., AWS, Jira) and the JD requires an equivalent (e.g., Azure, Trello), you MUST replace it in the achievements.
        *   Strategically weave keywords from the JD into the achievement descriptions.
    *   **education**: Parse the degree, institution, and graduation date for each educational entry.

The final output MUST be a valid JSON object matching the provided schema.
`

// BuildPrompt embeds both inputs verbatim into the revision instructions.
// Placeholders are substituted in a single pass, so input text is never
// re-expanded.
func BuildPrompt(resumeText, jobDescription string) string {
	return strings.NewReplacer(
		"{{RESUME}}", resumeText,
		"{{JOB_DESCRIPTION}}", jobDescription,
	).Replace(promptTemplate)
}

func stringSchema() *llm.Schema { return &llm.Schema{Type: llm.TypeString} }

func stringArraySchema() *llm.Schema {
	return &llm.Schema{Type: llm.TypeArray, Items: stringSchema()}
}

// ResponseSchema is the response shape requested from the model
var ResponseSchema = &llm.Schema{
	Type: llm.TypeObject,
	Properties: map[string]*llm.Schema{
		"originalAtsScore": {Type: llm.TypeNumber, Description: "ATS score for the original resume (0-100)."},
		"revisedAtsScore":  {Type: llm.TypeNumber, Description: "ATS score for the revised resume (0-100), aiming for 85%+."},
		"feedback":         {Type: llm.TypeString, Description: "Concise feedback on the changes made, using markdown for lists (e.g., '* Point 1')."},
		"revisedResume": {
			Type: llm.TypeObject,
			Properties: map[string]*llm.Schema{
				"contact": {
					Type: llm.TypeObject,
					Properties: map[string]*llm.Schema{
						"name":     stringSchema(),
						"email":    stringSchema(),
						"phone":    stringSchema(),
						"linkedin": stringSchema(),
						"location": stringSchema(),
					},
					Required: []string{"name"},
				},
				"summary": stringSchema(),
				"skills": {
					Type: llm.TypeArray,
					Items: &llm.Schema{
						Type: llm.TypeObject,
						Properties: map[string]*llm.Schema{
							"category": stringSchema(),
							"skills":   stringArraySchema(),
						},
						Required: []string{"category", "skills"},
					},
				},
				"experience": {
					Type: llm.TypeArray,
					Items: &llm.Schema{
						Type: llm.TypeObject,
						Properties: map[string]*llm.Schema{
							"role":         stringSchema(),
							"company":      stringSchema(),
							"location":     stringSchema(),
							"dates":        stringSchema(),
							"achievements": stringArraySchema(),
						},
						Required: []string{"role", "company", "dates", "achievements"},
					},
				},
				"education": {
					Type: llm.TypeArray,
					Items: &llm.Schema{
						Type: llm.TypeObject,
						Properties: map[string]*llm.Schema{
							"degree":         stringSchema(),
							"institution":    stringSchema(),
							"location":       stringSchema(),
							"graduationDate": stringSchema(),
						},
						Required: []string{"degree", "institution"},
					},
				},
			},
			Required: []string{"contact", "summary", "skills", "experience", "education"},
		},
	},
	Required: []string{"originalAtsScore", "revisedAtsScore", "feedback", "revisedResume"},
}
