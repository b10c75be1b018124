package domain

// Content store backends
const (
	BackendLocalNode = "local"
	BackendPinata    = "pinata"
	BackendMock      = "mock"
)

// ContentMetadata travels with an upload to the pinning service
type ContentMetadata struct {
	Name      string
	Type      string
	KeyValues map[string]string
}

// ContentUpload is the outcome of storing a blob
type ContentUpload struct {
	CID     string
	Size    int64
	Backend string
}

// GatewayURLs lists every location a content identifier can be fetched from
type GatewayURLs struct {
	Primary     string
	Public      []string
	ProtocolURI string
}

// Contains reports whether url is one of the gateway urls
func (g GatewayURLs) Contains(url string) bool {
	if g.Primary == url || g.ProtocolURI == url {
		return true
	}
	for _, u := range g.Public {
		if u == url {
			return true
		}
	}
	return false
}

// File is an uploaded document
type File struct {
	Name    string
	Type    string
	Content []byte
}
