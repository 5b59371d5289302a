package listing

import (
	"bytes"
	"encoding/json"
	"time"

	"NewsMirror/internal/domain"
)

type rootPayload struct {
	Sections []struct {
		Name          string         `json:"name"`
		ContentGroups []contentGroup `json:"contentGroups"`
	} `json:"sections"`
	Feed feedState `json:"feed"`
}

type feedPayload struct {
	ContentItems []contentGroup `json:"contentItems"`
	Pagination   pagination     `json:"pagination"`
	Feed         *feedState     `json:"feed"`
}

type feedState struct {
	ContentItems []contentGroup `json:"contentItems"`
	Pagination   pagination     `json:"pagination"`
}

type pagination struct {
	Offset      int  `json:"offset"`
	Limit       int  `json:"limit"`
	HasNextPage bool `json:"hasNextPage"`
}

func (p pagination) toDomain() domain.Pagination {
	return domain.Pagination{Offset: p.Offset, Limit: p.Limit, HasNextPage: p.HasNextPage}
}

// contentGroup carries properties directly or on its first content item.
type contentGroup struct {
	Properties   *itemProperties `json:"properties"`
	ContentItems []struct {
		Properties *itemProperties `json:"properties"`
	} `json:"contentItems"`
}

func (g contentGroup) itemProperties() itemProperties {
	if g.Properties != nil {
		return *g.Properties
	}
	if len(g.ContentItems) > 0 && g.ContentItems[0].Properties != nil {
		return *g.ContentItems[0].Properties
	}
	return itemProperties{}
}

type itemProperties struct {
	NewsPath    string      `json:"newsPath"`
	Title       string      `json:"title"`
	Summary     string      `json:"summary"`
	LastUpdated timestamp   `json:"lastUpdated"`
	StaticAsset staticAsset `json:"staticAsset"`
}

type staticAsset struct {
	ImageURL string `json:"imageUrl"`
}

// timestamp accepts an ISO-8601 string or epoch milliseconds.
type timestamp string

func (t *timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = timestamp(s)
		return nil
	}

	// Anything other than a string or integer millis leaves the item undated;
	// the window filter drops and counts it.
	var millis int64
	if err := json.Unmarshal(data, &millis); err != nil {
		*t = ""
		return nil
	}
	*t = timestamp(time.UnixMilli(millis).UTC().Format(time.RFC3339Nano))
	return nil
}
