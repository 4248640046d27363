package expert

// Persona is a configured reasoning role. Built-in personas are process-wide
// constants; user-defined personas are created once and then immutable.
type Persona struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role_description"`
	Temperature float32 `json:"temperature"`
	Builtin     bool    `json:"is_builtin"`
}

// Synthesizer returns the moderator persona used to distill a finished
// debate into a conclusion. It never posts and is not part of the registry.
func Synthesizer() Persona {
	return Persona{
		ID:          "moderator",
		DisplayName: "Moderator",
		Role: "You are a neutral moderator who distills expert debates into clear, balanced conclusions. " +
			"You weigh every position on its merits and never introduce opinions of your own.",
		Temperature: 0.3,
	}
}

// Builtins returns the fixed catalog of resident expert personas.
func Builtins() []Persona {
	return []Persona{
		{
			ID:          "visionary",
			DisplayName: "Visionary",
			Role: "You are an optimistic innovator who spots opportunities and unconventional solutions. " +
				"You enjoy challenging received wisdom and propose bold, forward-looking ideas.",
			Temperature: 0.9,
			Builtin:     true,
		},
		{
			ID:          "critic",
			DisplayName: "Critic",
			Role: "You are a rigorous critical thinker who hunts for risks, gaps and logical fallacies. " +
				"You point out the weak spots in a proposal so the discussion does not overlook important details.",
			Temperature: 0.3,
			Builtin:     true,
		},
		{
			ID:          "analyst",
			DisplayName: "Data Analyst",
			Role: "You are a data-driven analyst who only trusts numbers and evidence. " +
				"You back your positions with figures, case studies and step-by-step reasoning.",
			Temperature: 0.5,
			Builtin:     true,
		},
		{
			ID:          "pragmatist",
			DisplayName: "Pragmatist",
			Role: "You are good at synthesizing different viewpoints into balanced, actionable plans. " +
				"You identify where the group agrees and propose practical recommendations that serve everyone.",
			Temperature: 0.5,
			Builtin:     true,
		},
	}
}
