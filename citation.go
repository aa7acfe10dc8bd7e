package lectern

import (
	"fmt"
	"sort"
	"strings"
)

// Citation is a human-readable source reference built from a chunk's
// metadata. Snippet holds the leading text of the contributing chunks.
type Citation struct {
	Title     string   `json:"title"`
	FileType  FileType `json:"file_type"`
	PageStart int      `json:"page_start,omitempty"`
	PageEnd   int      `json:"page_end,omitempty"`
	Snippet   string   `json:"snippet,omitempty"`
}

// Format renders the citation with the template for its file type. Unknown
// types get a generic "{title} ({file_type})" rendering; formatting never
// fails.
func (c Citation) Format() string {
	switch c.FileType {
	case FileTypePDF:
		if c.PageStart > 0 && c.PageEnd > 0 {
			if c.PageStart == c.PageEnd {
				return fmt.Sprintf("%s (PDF), p. %d", c.Title, c.PageStart)
			}
			return fmt.Sprintf("%s (PDF), pp. %d-%d", c.Title, c.PageStart, c.PageEnd)
		}
		return fmt.Sprintf("%s (PDF)", c.Title)
	case FileTypeSRT:
		return fmt.Sprintf("%s (Transcript)", c.Title)
	default:
		return fmt.Sprintf("%s (%s)", c.Title, strings.ToUpper(string(c.FileType)))
	}
}

// FormatCitation renders a single chunk's metadata as a display string.
func FormatCitation(meta SourceMeta) string {
	return Citation{
		Title:     meta.Title,
		FileType:  meta.FileType,
		PageStart: meta.PageStart,
		PageEnd:   meta.PageEnd,
	}.Format()
}

const snippetLen = 200

// MergeCitations collapses retrieved results into one citation per source,
// merging contiguous or overlapping PDF page ranges into single entries.
// Non-paginated sources get a single citation each.
func MergeCitations(results []RetrievedResult) []Citation {
	type sourceKey struct {
		title string
		ft    FileType
	}

	grouped := make(map[sourceKey][]RetrievedResult)
	var order []sourceKey
	for _, r := range results {
		k := sourceKey{title: r.Chunk.Meta.Title, ft: r.Chunk.Meta.FileType}
		if _, ok := grouped[k]; !ok {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], r)
	}

	var citations []Citation
	for _, k := range order {
		group := grouped[k]
		snippet := joinSnippets(group)

		if k.ft != FileTypePDF {
			citations = append(citations, Citation{
				Title:    k.title,
				FileType: k.ft,
				Snippet:  snippet,
			})
			continue
		}

		type pageRange struct{ start, end int }
		ranges := make([]pageRange, 0, len(group))
		for _, r := range group {
			start := r.Chunk.Meta.PageStart
			end := r.Chunk.Meta.PageEnd
			if start == 0 {
				start = 1
			}
			if end < start {
				end = start
			}
			ranges = append(ranges, pageRange{start: start, end: end})
		}
		sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })

		cur := ranges[0]
		for _, pr := range ranges[1:] {
			if pr.start <= cur.end+1 {
				if pr.end > cur.end {
					cur.end = pr.end
				}
				continue
			}
			citations = append(citations, Citation{
				Title: k.title, FileType: k.ft,
				PageStart: cur.start, PageEnd: cur.end, Snippet: snippet,
			})
			cur = pr
		}
		citations = append(citations, Citation{
			Title: k.title, FileType: k.ft,
			PageStart: cur.start, PageEnd: cur.end, Snippet: snippet,
		})
	}
	return citations
}

func joinSnippets(group []RetrievedResult) string {
	parts := make([]string, 0, len(group))
	for _, r := range group {
		t := r.Chunk.Text
		if len(t) > snippetLen {
			t = t[:snippetLen]
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ... ")
}

// FormatCitationList renders citations separated by semicolons, or
// "No sources" when there are none.
func FormatCitationList(citations []Citation) string {
	if len(citations) == 0 {
		return "No sources"
	}
	parts := make([]string, len(citations))
	for i, c := range citations {
		parts[i] = c.Format()
	}
	return strings.Join(parts, "; ")
}
