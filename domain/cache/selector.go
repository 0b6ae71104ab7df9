package cache

// Selector is one invalidation request unit. A selector with an empty ID is
// broad: it matches every entry whose Typenames contains the typename. A
// selector with an ID is narrow: it matches every entry whose EntityIDs
// contains the derived token.
type Selector struct {
	Typename string `json:"typename" validate:"required"`
	ID       string `json:"id,omitempty"`
}

// PartitionSelectors splits selectors into the type names to invalidate
// broadly and the entity tokens to invalidate narrowly. A broad selector
// subsumes every narrow selector of the same typename within the same call,
// so narrow selectors are only kept when no broad selector names their
// typename. Both result slices are deduplicated and sorted.
func PartitionSelectors(selectors []Selector, build IdentifierBuilder) (typenames, entityTokens []string) {
	if build == nil {
		build = DefaultIdentifierBuilder
	}

	broad := make(map[string]struct{})
	for _, sel := range selectors {
		if sel.Typename != "" && sel.ID == "" {
			broad[sel.Typename] = struct{}{}
		}
	}

	narrow := make(map[string]struct{})
	for _, sel := range selectors {
		if sel.Typename == "" || sel.ID == "" {
			continue
		}
		if _, subsumed := broad[sel.Typename]; subsumed {
			continue
		}
		narrow[build(sel.Typename, sel.ID)] = struct{}{}
	}

	typenames = sortedKeys(broad)
	entityTokens = sortedKeys(narrow)
	return typenames, entityTokens
}

// ChunkStrings splits values into chunks of at most size elements, in order.
// Used to respect the store's bound on membership-predicate list size.
func ChunkStrings(values []string, size int) [][]string {
	if size <= 0 || len(values) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
