package carbontrackpb

type AccessLogDetails struct {
	Handler           string  `json:"handler,omitempty"`
	CarbontrackUUID   string  `json:"carbontrack_uuid,omitempty"`
	URL               string  `json:"url,omitempty"`
	PeerIP            string  `json:"peer_ip,omitempty"`
	PeerPort          string  `json:"peer_port,omitempty"`
	Host              string  `json:"host,omitempty"`
	Referer           string  `json:"referer,omitempty"`
	Format            string  `json:"format,omitempty"`
	Series            string  `json:"series,omitempty"`
	Axis              string  `json:"axis,omitempty"`
	Width             float64 `json:"width,omitempty"`
	Height            float64 `json:"height,omitempty"`
	UseCache          bool    `json:"use_cache,omitempty"`
	CacheTimeout      int32   `json:"cache_timeout,omitempty"`
	Runtime           float64 `json:"runtime,omitempty"`
	HTTPCode          int32   `json:"http_code,omitempty"`
	ResponseSizeBytes int64   `json:"response_size_bytes,omitempty"`
	Reason            string  `json:"reason,omitempty"`
	URI               string  `json:"uri,omitempty"`
	FromCache         bool    `json:"from_cache"`
	SamplesCount      int     `json:"samples_count,omitempty"`
	VisibleSamples    int     `json:"visible_samples,omitempty"`
}
