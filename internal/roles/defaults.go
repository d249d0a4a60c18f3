package roles

import "fmt"

// Default returns the starting prompts of an optimization run. They are
// intentionally weak so that the improvement over iterations is visible.
func Default() Set {
	return NewSet(
		Spec{Goal: "Do research", Backstory: "You research stuff."},
		Spec{Goal: "Analyze", Backstory: "You analyze."},
		Spec{Goal: "Write", Backstory: "You write."},
	)
}

// DefaultKorean is the Korean counterpart of Default.
func DefaultKorean() Set {
	return NewSet(
		Spec{Goal: "연구해", Backstory: "너는 연구하는 사람이야."},
		Spec{Goal: "분석해", Backstory: "너는 분석하는 사람이야."},
		Spec{Goal: "글 써", Backstory: "너는 글 쓰는 사람이야."},
	)
}

// Reference returns hand-written prompts used as a comparison baseline.
func Reference() Set {
	return NewSet(
		Spec{
			Goal: "Conduct thorough research and gather comprehensive information on assigned topics",
			Backstory: "You are an experienced research scientist with expertise in literature review " +
				"and information synthesis. You excel at finding relevant sources and " +
				"extracting key insights from complex information.",
		},
		Spec{
			Goal: "Analyze data and research findings to extract meaningful patterns and insights",
			Backstory: "You are a skilled data analyst with strong analytical thinking. " +
				"You can identify trends, patterns, and draw evidence-based conclusions " +
				"from research data.",
		},
		Spec{
			Goal: "Produce clear, well-structured scientific reports and documentation",
			Backstory: "You are a professional scientific writer with years of experience in " +
				"publishing research papers. You excel at communicating complex ideas " +
				"in a clear and engaging manner.",
		},
	)
}

// Builtin resolves the name of a built-in set. The locale picks the
// language of the "default" set.
func Builtin(name, locale string) (Set, error) {
	switch name {
	case "", "default":
		if locale == "ko" {
			return DefaultKorean(), nil
		}
		return Default(), nil
	case "reference":
		return Reference(), nil
	default:
		return Set{}, fmt.Errorf("unknown built-in prompt set %q", name)
	}
}
