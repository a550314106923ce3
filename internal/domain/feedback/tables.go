package feedback

// drills maps a metric to its recommendation text. {expert} is substituted.
var drills = map[string]string{
	"voice_modulation":     "Practice varying your tone and pitch like {expert}. Record yourself and listen for monotone sections.",
	"pause_timing":         "Study {expert}'s pause patterns. Practice strategic pauses for emphasis and audience engagement.",
	"gesture_coordination": "Watch {expert}'s hand gestures. Practice coordinating gestures with your key points.",
	"eye_contact":          "Emulate {expert}'s eye contact technique. Practice the triangle method: look at different audience sections.",
	"speaking_pace":        "Adjust your speaking pace to match {expert}'s rhythm. Practice with a metronome if needed.",
	"footwork_precision":   "Study {expert}'s footwork. Focus on balance and weight distribution during movement.",
	"technique_execution":  "Break down {expert}'s technique into steps. Practice each component slowly before combining.",
	"rhythm_accuracy":      "Practice with a metronome to match {expert}'s rhythmic precision.",
	"knife_skills":         "Study {expert}'s knife technique. Focus on grip, posture, and cutting motion.",
	"movement_precision":   "Practice {expert}'s movement quality. Focus on control and intention in every gesture.",
}

// domainInsights adds one domain-flavored line per expert domain.
var domainInsights = map[string]string{
	"Public Speaking": "{expert}'s speaking style emphasizes clarity, emotional connection, and audience engagement",
	"Sports":          "{expert} demonstrates perfect form, timing, and mental focus in athletic performance",
	"Music":           "{expert}'s musical approach combines technical mastery with emotional expression",
	"Cooking":         "{expert} showcases efficiency, precision, and creativity in culinary techniques",
}
