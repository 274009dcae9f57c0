package types

// Topic is one unit of work for a run: a single part of a series to turn into
// a video. Built fresh by the selector each run, never persisted.
type Topic struct {
	Title   string    `json:"title"`
	URL     string    `json:"url"`
	Snippet string    `json:"snippet"`
	Meta    TopicMeta `json:"meta"`
}

// TopicMeta carries the series identity a topic belongs to.
type TopicMeta struct {
	SeriesKey string `json:"series_key"`
	Seed      string `json:"seed"`
	Part      int    `json:"part"`
	Mode      string `json:"mode"`
}

// Content holds everything the text generator produces for one topic.
type Content struct {
	Script      string   `json:"script"`
	Tweet       string   `json:"tweet"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Hashtags    []string `json:"hashtags"`
}
