package generator

import "encoding/json"

type RoadmapRequest struct {
	Topic string `json:"topic"`
	Depth string `json:"depth"`
}

type roadmapResponse struct {
	Roadmap json.RawMessage `json:"roadmap"`
}

type PlaylistRequest struct {
	Topic       string `json:"topic"`
	Level       string `json:"level"`
	VideoLength string `json:"video_length"`
	PageSize    int    `json:"page_size"`
}

type playlistResponse struct {
	Pages []json.RawMessage `json:"pages"`
}

type errorResponse struct {
	Error string `json:"error"`
}
