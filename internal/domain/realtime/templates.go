package realtime

// template is the suggestion text for one metric. Placeholders: {current},
// {target} and {potential}.
type template struct {
	text     string
	category string
}

var genericTemplate = template{
	text:     "Work on your {metric}. Current: {current}, target: {target}",
	category: "general",
}

var templates = map[string]template{
	"posture_stability": {
		text:     "Stand with your feet shoulder-width apart for better stability. Current stability: {current}%, target: {target}%",
		category: "movement",
	},
	"eye_contact": {
		text:     "Increase eye contact with your audience. Current: {current}%, aim for {target}%",
		category: "movement",
	},
	"pause_frequency": {
		text:     "Add more pauses between key points. Current pause frequency: {current}, optimal: {target}",
		category: "speech",
	},
	"confidence_score": {
		text:     "Project more confidence with an open stance and steady voice. Current: {current}%, target: {target}%",
		category: "speech",
	},
	"rhythm_accuracy": {
		text:     "Focus on staying in sync with the beat. Current accuracy: {current}%, target: {target}%",
		category: "timing",
	},
	"rhythm_consistency": {
		text:     "Practice with a metronome to steady your rhythm. Current: {current}%, target: {target}%",
		category: "timing",
	},
	"timing_accuracy": {
		text:     "Count through each phrase to land on time. Current accuracy: {current}%, target: {target}%",
		category: "timing",
	},
	"technique_score": {
		text:     "Pay attention to your hand position and posture. Current technique score: {current}%",
		category: "technique",
	},
	"movement_fluidity": {
		text:     "Connect your movements without pausing between them. Fluidity can improve by {potential} points",
		category: "movement",
	},
	"knife_technique": {
		text:     "Keep the claw grip and let the blade do the work. Current: {current}%, target: {target}%",
		category: "technique",
	},
	"timing_precision": {
		text:     "Start timers for every step and check doneness early. Current: {current}%, target: {target}%",
		category: "timing",
	},
	"safety_compliance": {
		text:     "Clear your station and keep handles turned inward. Current: {current}%, target: {target}%",
		category: "safety",
	},
	"form_accuracy": {
		text:     "Slow down and hold correct form through the full range. Current: {current}%, target: {target}%",
		category: "technique",
	},
	"balance_stability": {
		text:     "Lower your center of gravity and engage your core. Current: {current}%, target: {target}%",
		category: "movement",
	},
}
