package embcache

import "iter"

const noTitle = "No Title"

// Summary is one line of a snapshot listing.
type Summary struct {
	Index int
	Type  string
	Title string
	ID    string
}

// Inspector is a read-only view over a loaded snapshot.
type Inspector struct {
	snap *Snapshot
}

func NewInspector(s *Snapshot) *Inspector {
	return &Inspector{snap: s}
}

func (in *Inspector) Count() int {
	return in.snap.Len()
}

// Summaries yields one Summary per document in snapshot order. The sequence
// holds no state of its own and can be ranged over any number of times.
func (in *Inspector) Summaries() iter.Seq[Summary] {
	return func(yield func(Summary) bool) {
		in.snap.Each(func(i int, doc *Document, _ []float32) bool {
			return yield(Summary{Index: i, Type: doc.Type, Title: displayTitle(doc), ID: doc.ID})
		})
	}
}

func displayTitle(doc *Document) string {
	if t, ok := doc.Metadata["title"].(string); ok && t != "" {
		return t
	}
	return noTitle
}

// Detail returns document i and its embedding.
func (in *Inspector) Detail(i int) (Document, []float32, error) {
	doc, err := in.snap.Document(i)
	if err != nil {
		return Document{}, nil, err
	}
	vec, err := in.snap.Embedding(i)
	if err != nil {
		return Document{}, nil, err
	}
	return doc, vec, nil
}

// VectorPreview returns the first n components of embedding i. n is clamped
// to [0, dimension]; the result is never padded.
func (in *Inspector) VectorPreview(i, n int) ([]float32, error) {
	vec, err := in.snap.Embedding(i)
	if err != nil {
		return nil, err
	}
	n = max(0, min(n, len(vec)))
	return vec[:n], nil
}
