package grounding

import "github.com/poiesic/grounder/core"

// unknownField renders for any missing identity field rather than failing.
const unknownField = "unknown"

// ExpandQuery augments the raw prompt with temporal, role, and department
// context to form the query sent to the connectors. Pure and deterministic:
// identical inputs always yield the identical expanded query.
func ExpandQuery(prompt string, identity *core.UserContext) string {
	currentDate, role, department := unknownField, unknownField, unknownField
	if identity != nil {
		if identity.CurrentDate != "" {
			currentDate = identity.CurrentDate
		}
		if identity.Role != "" {
			role = identity.Role
		}
		if identity.Department != "" {
			department = identity.Department
		}
	}

	return prompt + "\n\nContext:\n" +
		"current date: " + currentDate + "\n" +
		"user role: " + role + "\n" +
		"department: " + department
}
