package prompt

const evaluationSystemEN = "You are a rigorous scientific reviewer who provides precise, fine-grained evaluations. Use decimal precision in your scores."

// evaluationTemplateEN asks for one labeled line per dimension followed by the
// overall line; the score parser depends on that line shape.
const evaluationTemplateEN = `You are an expert scientific reviewer. Evaluate the following AI scientist's output with PRECISE, GRANULAR scoring.

Use a 0-100 scale where:
- 0-20: Severely deficient, unusable
- 21-40: Poor quality, major issues
- 41-60: Mediocre, significant improvements needed
- 61-75: Acceptable, but clear room for improvement
- 76-85: Good quality, minor improvements possible
- 86-95: Excellent, high-quality work
- 96-100: Outstanding, publication-ready

Evaluate on these dimensions (weight each equally):

1. **{{index .Dimensions 0}} (0-100)**: How directly and comprehensively does it address the topic?
2. **{{index .Dimensions 1}} (0-100)**: How thorough, detailed, and insightful is the analysis? Are specific examples, case studies, and quantitative data provided?
3. **{{index .Dimensions 2}} (0-100)**: How clear, well-structured, and readable is the writing?
4. **{{index .Dimensions 3}} (0-100)**: How sound is the methodology? Are claims supported by citations and evidence?
5. **{{index .Dimensions 4}} (0-100)**: How complete is the coverage? Are multiple perspectives, ethical considerations, and limitations addressed?

Provide scores for EACH dimension, then calculate the {{.Overall}} score as the average.

**CRITICAL**: Be precise with decimals. Use scores like 67.5, 72.3, 84.8, not just whole numbers.
**CRITICAL**: Identify specific weaknesses and strengths to justify the score.
**CRITICAL**: Be discerning - reserve scores above 85 for truly exceptional work.

Format your response EXACTLY as:
` + "```" + `
{{range .Dimensions}}{{.}}: [score]/100
{{end}}{{.Overall}}: [score]/100

Feedback:
[Detailed feedback with specific examples of strengths and weaknesses for each dimension]
` + "```" + `

Output to evaluate:
{{.Artifact}}
`

const rewriteSystemEN = "You are an expert in prompt engineering for AI research agents. Output only valid JSON."

const rewriteTemplateEN = `You are an expert prompt engineer specializing in AI agent optimization.

Role: {{.RoleLabel}}
Current Prompt:
Goal: {{.Goal}}
Backstory: {{.Backstory}}

Recent Evaluation Feedback:
{{.Feedback}}

Your task: Create SIGNIFICANTLY IMPROVED prompts that address the weaknesses mentioned in the feedback.

Key improvements needed:
- Add specific examples and case studies
- Include detailed methodological guidance
- Emphasize scientific rigor and citation practices
- Expand depth of analysis expectations
- Include ethical considerations
- Make the agent more proactive and comprehensive

Create detailed, professional prompts that will guide this agent to produce higher quality scientific work.

Respond ONLY with valid JSON in this exact format (no markdown, no extra text):
{
  "goal": "detailed, specific goal that includes what to prioritize and how to approach the task",
  "backstory": "comprehensive backstory that establishes expertise, methods, and high standards for this role"
}
`

const agentSystemTemplateEN = `You are {{.RoleLabel}}.
{{.Backstory}}

Your personal goal is: {{.Goal}}`

const researcherTaskEN = `Conduct comprehensive research on: {{.Topic}}. Gather relevant information, identify key concepts, and summarize findings.

Expected output: A detailed research summary with key findings and insights`

const analystTaskEN = `Analyze the research findings from the previous task. Identify patterns, trends, and draw meaningful conclusions.

Research topic: {{.Topic}}

Context from the previous task:
{{.Context}}

Expected output: An analytical report with data-driven insights and conclusions`

const writerTaskEN = `Write a comprehensive scientific report based on the research and analysis. Include introduction, methodology, findings, and conclusions.

Research topic: {{.Topic}}

Context from the previous tasks:
{{.Context}}

Expected output: A well-structured scientific report in professional format`
