package hermes

// subjectRoot prefixes every evaluation subject; the event stream captures
// everything below it.
const subjectRoot = "strategist.evaluation"

// SubjectEvaluationCompleted is published after an evaluation succeeds and its
// history record has been written.
func SubjectEvaluationCompleted(pair string) string {
	return subjectRoot + "." + subjectToken(pair) + ".completed"
}

// SubjectEvaluationFailed is published when an evaluation request is rejected.
func SubjectEvaluationFailed(pair string) string {
	return subjectRoot + "." + subjectToken(pair) + ".failed"
}

// SubjectEvaluations matches every evaluation event for every pair.
func SubjectEvaluations() string {
	return subjectRoot + ".>"
}

// subjectToken makes pair usable as a single NATS subject token.
func subjectToken(pair string) string {
	if pair == "" {
		return "default"
	}
	b := []byte(pair)
	for i, c := range b {
		switch c {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			b[i] = '_'
		}
	}
	return string(b)
}
