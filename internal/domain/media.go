package domain

// MediaReference is the result of ingesting an image. URL is what clients
// embed: a stable public URL, or a V4 signed URL for private assets. FileRef
// is the canonical storage path independent of visibility. ExpiresBy is epoch
// milliseconds; zero means the URL never expires (public assets only).
type MediaReference struct {
	URL       string `json:"url"`
	FileRef   string `json:"fileRef"`
	ExpiresBy int64  `json:"expiresBy"`
}
