package pipeline

// Prompt templates for the five stages. The generated content itself is not
// part of the pipeline contract; these exist so each stage produces output in
// the shape its parser expects.

const metadataPrompt = `You are naming a software project. Based on the product idea below,
produce a short project name and a one-paragraph description.

Product idea:
%s

Reply with ONLY a JSON object of the form {"name": "...", "description": "..."}.
No markdown, no explanations.`

const requirementsPrompt = `You are a senior business analyst. Write the software requirements
for the product idea below as a markdown document: functional requirements,
non-functional requirements, and acceptance criteria, each as a numbered list.

Product idea:
%s`

const diagramsPrompt = `You are a software architect producing React Flow UML diagrams.
Generate four diagrams for the product idea below and return ONE JSON object
with exactly the top-level keys "class", "sequence", "activity", "usecase".

Each diagram must have "title", "type", "nodes", "edges". Every node needs
"id", "type", "position" ({"x", "y"}), "data", "width", "height". Every edge
needs "id", "source", "target", "type" and a default "style" of
{"strokeWidth": 3, "stroke": "#B1B1B7"}. Node ids must be unique across ALL
four diagrams, and every edge must reference existing node ids.

Product idea:
%s

Output ONLY valid JSON. No markdown, no explanations.`

const plannerPrompt = `You are a technical program manager. Using the requirements below,
write a phased project plan as a markdown document: milestones, work breakdown,
and a rough timeline.

Product idea:
%s

Requirements:
%s`

const exportPrompt = `Assemble the final blueprint document for the product below as a single
markdown file with these sections: Overview, Requirements, Architecture
Diagrams (reference the diagram titles), and Project Plan. Reuse the content
provided; do not invent new requirements.

Project: %s — %s

Requirements:
%s

Plan:
%s`
