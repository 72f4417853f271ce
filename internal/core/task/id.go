package task

import "fmt"

// GenerateTaskID generates a task ID from the current max number.
// The format is TASK-XXX where XXX is a zero-padded number of at least 3 digits.
func GenerateTaskID(currentMax int) string {
	return fmt.Sprintf("TASK-%03d", currentMax+1)
}

// ParseTaskNumber extracts the numeric portion from a task ID.
// Returns -1 if the ID format is invalid.
func ParseTaskNumber(id string) int {
	var num int
	_, err := fmt.Sscanf(id, "TASK-%d", &num)
	if err != nil {
		return -1
	}
	return num
}
