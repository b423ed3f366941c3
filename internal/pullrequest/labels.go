package pullrequest

// MergeLabels returns the configured labels followed by every triggering label that is not the target branch,
// not excluded, and not already present.
func MergeLabels(configured []string, triggering []string, targetBranch string, excluded []string) []string {
	excludedLabels := make(map[string]struct{}, len(excluded))
	for _, excludedLabel := range excluded {
		excludedLabels[excludedLabel] = struct{}{}
	}

	mergedLabels := make([]string, 0, len(configured)+len(triggering))
	seenLabels := make(map[string]struct{}, len(configured)+len(triggering))
	for _, configuredLabel := range configured {
		if _, seen := seenLabels[configuredLabel]; seen {
			continue
		}
		seenLabels[configuredLabel] = struct{}{}
		mergedLabels = append(mergedLabels, configuredLabel)
	}

	for _, triggeringLabel := range triggering {
		if triggeringLabel == targetBranch {
			continue
		}
		if _, isExcluded := excludedLabels[triggeringLabel]; isExcluded {
			continue
		}
		if _, seen := seenLabels[triggeringLabel]; seen {
			continue
		}
		seenLabels[triggeringLabel] = struct{}{}
		mergedLabels = append(mergedLabels, triggeringLabel)
	}
	return mergedLabels
}
