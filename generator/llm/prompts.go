package llm

import (
	"fmt"
	"strings"

	"github.com/smallnest/mindcanvas/generator"
)

const pathSeparator = " → "

func childrenPrompt(concept string, contextPath []string, maxChildren int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a knowledge-graph assistant. Given the concept %q, propose %d to %d directly related sub-concepts.\n",
		concept, max(maxChildren-1, 1), maxChildren)

	if len(contextPath) > 0 {
		path := strings.Join(contextPath, pathSeparator)
		fmt.Fprintf(&b, "\nThe user is exploring the path: %s%s%s\n", path, pathSeparator, concept)
		fmt.Fprintf(&b, "Every proposal must be a concrete sub-category, option, parameter or component of %q within %q.\n", concept, path)
	}

	b.WriteString(`
Rules:
1. Proposals must be direct sub-categories, concrete options, components or parameters.
2. For "how to" questions, list the concrete factors to consider.
3. For attributes, list concrete specifications, value ranges or options.
4. For concepts, list sub-concepts, formulas and theorems.
5. Never propose concepts unrelated to the context, and never abstract or poetic words.
6. Write "concept" in the language of the input and "translation" in English.

Reply with a JSON array only:
[{"concept": "...", "translation": "..."}]`)
	return b.String()
}

func detailPrompt(concept string, contextPath []string) string {
	var b strings.Builder
	b.WriteString("You are a knowledge assistant. ")
	if len(contextPath) > 0 {
		fmt.Fprintf(&b, "In the context of %q, ", strings.Join(contextPath, pathSeparator))
	}
	fmt.Fprintf(&b, "the user wants the details of %q.\n", concept)
	fmt.Fprintf(&b, `
Decide whether %q is a concept that needs a concrete elaboration (formula, theorem, definition, method).
If it is, give a concise elaboration of at most 200 characters: formulas in plain text, the core
statement of a theorem or definition, or the key steps of a method.
If it is only a category or an abstract idea, return an empty detail.

Reply with JSON only:
{"hasDetail": true, "detail": "..."}`, concept)
	return b.String()
}

func summaryPrompt(concepts []generator.ConceptRef) string {
	items := make([]string, 0, len(concepts))
	for _, c := range concepts {
		if c.Translation != "" {
			items = append(items, fmt.Sprintf("%s (%s)", c.Concept, c.Translation))
		} else {
			items = append(items, c.Concept)
		}
	}

	return fmt.Sprintf(`You are a knowledge organization assistant. Through a mind map the user explored these concepts:

%s

Produce a structured framework and a learning or implementation plan:
1. Summarize the core relationships between the concepts.
2. Give a clear knowledge framework (hierarchical).
3. Give a concrete, ordered learning path or implementation steps.
4. Point out key technologies or tools, if any.
5. Suggest directions for further exploration.

Answer in the language of the concepts and format the answer as Markdown.`, strings.Join(items, ", "))
}
