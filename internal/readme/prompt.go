package readme

import (
	"fmt"
	"strings"
)

// BuildPrompt asks for a complete markdown README describing the repository.
func BuildPrompt(info RepoInfo, files []string) string {
	var b strings.Builder
	b.WriteString("Generate a professional README.md file for the GitHub project below:\n\n")
	fmt.Fprintf(&b, "Project Name: %s\n", info.Name)
	fmt.Fprintf(&b, "Description: %s\n", info.Description)
	fmt.Fprintf(&b, "Main Language: %s\n", info.Language)
	fmt.Fprintf(&b, "File List: %s\n\n", strings.Join(files, ", "))
	b.WriteString("Include the following:\n")
	for _, section := range []string{
		"Project title and description",
		"Features",
		"Tech stack",
		"Installation guide",
		"Usage",
		"License (if applicable)",
	} {
		fmt.Fprintf(&b, "- %s\n", section)
	}
	b.WriteString("\nFormat it in Markdown.")
	return b.String()
}

// Title is the document title a generated README is saved under.
func Title(repo string) string {
	return repo + "-README.md"
}
