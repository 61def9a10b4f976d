package domain

// Block is one editor block of an artifact body. Data carries the
// type-specific payload; which fields are set depends on Type.
type Block struct {
	ID   string    `json:"id" firestore:"id"`
	Type string    `json:"type" firestore:"type"`
	Data BlockData `json:"data" firestore:"data"`
}

type BlockData struct {
	Level          *int      `json:"level,omitempty" firestore:"level,omitempty"`
	Text           string    `json:"text,omitempty" firestore:"text,omitempty"`
	Caption        string    `json:"caption,omitempty" firestore:"caption,omitempty"`
	File           *FileData `json:"file,omitempty" firestore:"file,omitempty"`
	Stretched      bool      `json:"stretched,omitempty" firestore:"stretched,omitempty"`
	WithBackground bool      `json:"withBackground,omitempty" firestore:"withBackground,omitempty"`
	WithBorder     bool      `json:"withBorder,omitempty" firestore:"withBorder,omitempty"`
	Items          []string  `json:"items,omitempty" firestore:"items,omitempty"`
	Style          string    `json:"style,omitempty" firestore:"style,omitempty"`
	Code           string    `json:"code,omitempty" firestore:"code,omitempty"`
}

type FileData struct {
	URL string `json:"url" firestore:"url"`
}

// Document is the ordered block body of an artifact.
type Document struct {
	Blocks  []Block `json:"blocks" firestore:"blocks"`
	Time    int64   `json:"time" firestore:"time"`
	Version string  `json:"version" firestore:"version"`
}

type Tag struct {
	Name string `json:"name" firestore:"name"`
}

// Meta carries the artifact's descriptive fields. CreatedDate and
// ModifiedDate are epoch milliseconds; CreatedDate never changes after
// creation and ModifiedDate is restamped on every update.
type Meta struct {
	Author   string   `json:"author" firestore:"author"`
	Username string   `json:"username" firestore:"username"`
	Tags     []Tag    `json:"tags" firestore:"tags"`
	Poster   string   `json:"poster" firestore:"poster"`
	Imgs     []string `json:"imgs" firestore:"imgs"`

	CreatedDate  int64 `json:"createdDate" firestore:"createdDate"`
	ModifiedDate int64 `json:"modifiedDate" firestore:"modifiedDate"`

	Head    string `json:"head" firestore:"head"`
	Summary string `json:"meta,omitempty" firestore:"meta,omitempty"`
	Details string `json:"details" firestore:"details"`

	ContentLength int `json:"cl,omitempty" firestore:"cl,omitempty"`
}

// InShort is a short-form head+content projection derived from the body.
type InShort struct {
	Head    string `json:"head" firestore:"head"`
	Content string `json:"content" firestore:"content"`
}

// Artifact is the primary entity: a block document plus metadata.
type Artifact struct {
	ID      string    `json:"id" firestore:"id"`
	Record  Document  `json:"record" firestore:"record"`
	Meta    Meta      `json:"meta" firestore:"meta"`
	InShort []InShort `json:"inShort" firestore:"inShort"`
}

// SecArtifact is an Artifact decorated with per-caller editability flags.
// The flags are derived from the caller's ownership index entry at read time
// and are never persisted.
type SecArtifact struct {
	Artifact
	IsEditable bool `json:"isEditable"`
	IsDelete   bool `json:"isDelete"`
}

// Journal is the read-only listing projection of an artifact. It is always
// recomputed from the artifact document, never stored.
type Journal struct {
	ID string `json:"id"`

	Author       string `json:"author"`
	Forepart     string `json:"forepart"`
	Backdrop     string `json:"backdrop"`
	CreatedDate  int64  `json:"createdDate"`
	ModifiedDate int64  `json:"modifiedDate"`

	Head    string `json:"head"`
	Summary string `json:"meta"`
	Details string `json:"details"`

	Tags          []Tag `json:"tags"`
	ContentLength int   `json:"cl"`
}

// JournalFromArtifact projects an artifact's meta fields into its listing
// entry. Backdrop comes from the second image when one exists.
func JournalFromArtifact(a *Artifact) Journal {
	backdrop := ""
	if len(a.Meta.Imgs) > 1 {
		backdrop = a.Meta.Imgs[1]
	}
	return Journal{
		ID:           a.ID,
		Author:       a.Meta.Author,
		Forepart:     a.Meta.Poster,
		Backdrop:     backdrop,
		CreatedDate:  a.Meta.CreatedDate,
		ModifiedDate: a.Meta.ModifiedDate,
		Head:         a.Meta.Head,
		Summary:      a.Meta.Summary,
		Details:      a.Meta.Details,
		Tags:         a.Meta.Tags,
	}
}

// ContributorDoc is the persisted ownership index entry: the set of artifact
// IDs a contributor owns, stored as an array.
type ContributorDoc struct {
	Artifacts []string `json:"artifacts" firestore:"artifacts"`
}
