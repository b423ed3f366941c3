package pullrequest

// ComputeTitle prefixes the original title. A missing original title with a prefix yields the prefix alone.
func ComputeTitle(titlePrefix string, originalTitle *string) string {
	var title string
	if originalTitle != nil {
		title = *originalTitle
	}
	if len(titlePrefix) == 0 {
		return title
	}
	return titlePrefix + title
}
