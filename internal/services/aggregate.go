package services

// Accuracy is the percent of correct answers. An empty answer set counts as
// zero, never as a pass.
func Accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}

// TopicScore blends content coverage and exercise accuracy into one percent,
// weighting both halves equally.
func TopicScore(viewedCountable, totalCountable int, accuracyPercent float64) float64 {
	contentFraction := 0.0
	if totalCountable > 0 {
		contentFraction = float64(viewedCountable) / float64(totalCountable)
	}
	return 0.5*contentFraction*100 + 0.5*accuracyPercent
}

// LessonPercent is the mean topic score across a lesson's active topics.
func LessonPercent(topicScores []float64) float64 {
	if len(topicScores) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range topicScores {
		sum += s
	}
	return sum / float64(len(topicScores))
}
