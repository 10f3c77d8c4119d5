package domain

import (
	"fmt"
	"strings"
)

// Session tags are persisted as prefixed strings (`doc:<id>`,
// `backend:<id>[:<tag,...>]`, `collection:<id>[:<tag,...>]`, or a bare tag).
// In memory they are a closed set of typed variants; ParseTag and the
// String methods convert between the two representations.

type SessionTag interface {
	fmt.Stringer
	sessionTag()
}

// PlainTag matches local chunks carrying this tag.
type PlainTag string

func (t PlainTag) sessionTag()    {}
func (t PlainTag) String() string { return string(t) }

// DocumentRefTag includes one specific local document unconditionally.
type DocumentRefTag struct {
	DocumentID string
}

func (t DocumentRefTag) sessionTag()    {}
func (t DocumentRefTag) String() string { return "doc:" + t.DocumentID }

// BackendRefTag routes the query to one remote store, optionally constrained
// to the nested tags.
type BackendRefTag struct {
	BackendID string
	Tags      []string
}

func (t BackendRefTag) sessionTag() {}
func (t BackendRefTag) String() string {
	return serializeSelector("backend", t.BackendID, t.Tags)
}

// CollectionRefTag routes the query to one named remote collection,
// optionally constrained to the nested tags.
type CollectionRefTag struct {
	CollectionID string
	Tags         []string
}

func (t CollectionRefTag) sessionTag() {}
func (t CollectionRefTag) String() string {
	return serializeSelector("collection", t.CollectionID, t.Tags)
}

func serializeSelector(prefix, id string, tags []string) string {
	if len(tags) == 0 {
		return prefix + ":" + id
	}
	return prefix + ":" + id + ":" + strings.Join(tags, ",")
}

// ParseTag classifies one raw session tag. Malformed selectors (an empty ID
// after the prefix) return ErrInvalidInput; callers that iterate a whole
// session skip those rather than failing the session.
func ParseTag(raw string) (SessionTag, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, WrapError(ErrInvalidInput, "parse tag", fmt.Errorf("empty tag"))
	}

	switch {
	case strings.HasPrefix(trimmed, "doc:"):
		id := strings.TrimSpace(strings.TrimPrefix(trimmed, "doc:"))
		if id == "" {
			return nil, WrapError(ErrInvalidInput, "parse tag", fmt.Errorf("doc reference without id: %q", raw))
		}
		return DocumentRefTag{DocumentID: id}, nil

	case strings.HasPrefix(trimmed, "backend:"):
		id, tags, err := parseSelector(trimmed, "backend:")
		if err != nil {
			return nil, err
		}
		return BackendRefTag{BackendID: id, Tags: tags}, nil

	case strings.HasPrefix(trimmed, "collection:"):
		id, tags, err := parseSelector(trimmed, "collection:")
		if err != nil {
			return nil, err
		}
		return CollectionRefTag{CollectionID: id, Tags: tags}, nil

	default:
		return PlainTag(trimmed), nil
	}
}

func parseSelector(raw, prefix string) (string, []string, error) {
	rest := strings.TrimPrefix(raw, prefix)
	id := rest
	var tagSegment string
	if sep := strings.Index(rest, ":"); sep >= 0 {
		id = rest[:sep]
		tagSegment = rest[sep+1:]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", nil, WrapError(ErrInvalidInput, "parse tag", fmt.Errorf("%s selector without id: %q", strings.TrimSuffix(prefix, ":"), raw))
	}

	var tags []string
	for _, tag := range strings.Split(tagSegment, ",") {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return id, tags, nil
}

// BackendSelector is one resolved remote-store routing instruction.
type BackendSelector struct {
	ID   string
	Tags []string
}

// TagResolution is the classified view of a session's tag list.
type TagResolution struct {
	PlainTags           []string
	DocumentIDs         []string
	BackendSelectors    []BackendSelector
	CollectionSelectors []BackendSelector
	HasRemoteSource     bool
}

// RemoteFilter flattens the resolution's remote selectors into a single
// search filter, batching all IDs and tags into one request.
func (r TagResolution) RemoteFilter() RemoteFilter {
	filter := RemoteFilter{Tags: r.PlainTags}
	for _, selector := range r.BackendSelectors {
		filter.BackendIDs = append(filter.BackendIDs, selector.ID)
	}
	for _, selector := range r.CollectionSelectors {
		filter.CollectionIDs = append(filter.CollectionIDs, selector.ID)
	}
	return filter
}

// ResolveTags classifies every tag of a session into exactly one bucket,
// preserving input order. Malformed tags are dropped; one bad tag must not
// break the session. Nested selector tags are also appended to PlainTags so
// the local flow would honor them if it were ever reached; the orchestrator's
// remote branch never consults local search, so the merge stays inert there.
func ResolveTags(raw []string) TagResolution {
	var resolution TagResolution
	for _, entry := range raw {
		tag, err := ParseTag(entry)
		if err != nil {
			continue
		}
		switch t := tag.(type) {
		case PlainTag:
			resolution.PlainTags = append(resolution.PlainTags, string(t))
		case DocumentRefTag:
			resolution.DocumentIDs = append(resolution.DocumentIDs, t.DocumentID)
		case BackendRefTag:
			resolution.BackendSelectors = append(resolution.BackendSelectors, BackendSelector{ID: t.BackendID, Tags: t.Tags})
			resolution.PlainTags = append(resolution.PlainTags, t.Tags...)
			resolution.HasRemoteSource = true
		case CollectionRefTag:
			resolution.CollectionSelectors = append(resolution.CollectionSelectors, BackendSelector{ID: t.CollectionID, Tags: t.Tags})
			resolution.PlainTags = append(resolution.PlainTags, t.Tags...)
			resolution.HasRemoteSource = true
		}
	}
	return resolution
}
