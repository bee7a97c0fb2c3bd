package session

import (
	"path/filepath"
	"strings"
)

// TitleStyle tells the UI how to render a title segment
type TitleStyle int

const (
	StylePlain TitleStyle = iota
	StyleMuted
	StyleHint
	StyleQueueHead
)

// TitleSegment is one styled run of the title
type TitleSegment struct {
	Text  string
	Style TitleStyle
}

// Title describes the selection: the base path, then the folder names,
// with the next queued folder marked in queue mode.
type Title []TitleSegment

// String joins the title without styling
func (t Title) String() string {
	var b strings.Builder
	for _, seg := range t {
		b.WriteString(seg.Text)
	}
	return b.String()
}

// Title builds the title for the current targets
func (s *Session) Title() Title {
	head := AppName
	if s.version != "" {
		head += " " + s.version
	}
	title := Title{{Text: head, Style: StylePlain}}

	folders := s.targets.Folders()
	if len(folders) == 0 {
		return append(title,
			TitleSegment{Text: " - No folders selected", Style: StyleMuted},
			TitleSegment{Text: " - Pass folders as arguments", Style: StyleHint},
		)
	}

	base := filepath.Dir(folders[0])
	title = append(title, TitleSegment{Text: " - " + base + ": ", Style: StyleMuted})

	if s.QueueMode() {
		title = append(title, TitleSegment{Text: "Next in queue: " + filepath.Base(folders[0]), Style: StyleQueueHead})
		for _, f := range folders[1:] {
			title = append(title, TitleSegment{Text: ", " + filepath.Base(f), Style: StylePlain})
		}
		return title
	}

	names := make([]string, len(folders))
	for i, f := range folders {
		names[i] = filepath.Base(f)
	}
	return append(title, TitleSegment{Text: strings.Join(names, ", "), Style: StylePlain})
}
