package dynamiccomponents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vioreel/viocommerce/lib/myerrors"
	"github.com/vioreel/viocommerce/lib/mylog"
	"github.com/vioreel/viocommerce/services/cart"
)

const fetchTimeout = 5 * time.Second

type componentDTO struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	StartTime *time.Time       `json:"startTime,omitempty"`
	EndTime   *time.Time       `json:"endTime,omitempty"`
	Position  string           `json:"position,omitempty"`
	TriggerOn string           `json:"triggerOn,omitempty"`
	Data      componentDataDTO `json:"data"`
}

type componentDataDTO struct {
	Title      string        `json:"title,omitempty"`
	Text       string        `json:"text,omitempty"`
	Animation  string        `json:"animation,omitempty"`
	Duration   int64         `json:"duration,omitempty"`
	ProductUID string        `json:"productId,omitempty"`
	Product    *cart.Product `json:"product,omitempty"`
}

// Fetcher loads the dynamic components configured for a live stream.
type Fetcher struct {
	logger     mylog.Logger
	baseURL    string
	apiToken   string
	httpClient *http.Client
}

func NewFetcher(baseURL string, apiToken string) *Fetcher {
	return &Fetcher{
		logger:   mylog.New("dynamiccomponents"),
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiToken: apiToken,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch returns the components for a stream. Entries with an unknown type or
// a featured_product without product payload are dropped, not fatal.
func (f *Fetcher) Fetch(c context.Context, streamUID string) ([]Component, error) {
	url := fmt.Sprintf("%s/api/components/stream/%s", f.baseURL, streamUID)

	httpReq, err := http.NewRequestWithContext(c, http.MethodGet, url, nil)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error creating request for %s: %s", url, err))
	}
	httpReq.Header.Set("Authorization", "Bearer "+f.apiToken)
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := f.httpClient.Do(httpReq)
	if err != nil {
		return nil, myerrors.NewUnavailableError(fmt.Errorf("error fetching components for stream %s: %s", streamUID, err))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		body, _ := io.ReadAll(httpResp.Body)
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching components for stream %s: status %d: %s", streamUID, httpResp.StatusCode, string(body)))
	}

	dtos := []componentDTO{}
	err = json.NewDecoder(httpResp.Body).Decode(&dtos)
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error decoding components for stream %s: %s", streamUID, err))
	}

	components := make([]Component, 0, len(dtos))
	for _, dto := range dtos {
		component, ok := f.fromDTO(c, dto)
		if !ok {
			continue
		}
		components = append(components, component)
	}

	return components, nil
}

func (f *Fetcher) fromDTO(c context.Context, dto componentDTO) (Component, bool) {
	componentType := ComponentType(dto.Type)
	switch componentType {
	case TypeBanner:
	case TypeFeaturedProduct:
		if dto.Data.Product == nil {
			f.logger.Log(c, dto.ID, mylog.SeverityWarn, "Dropping featured_product component %s without product", dto.ID)
			return Component{}, false
		}
	default:
		f.logger.Log(c, dto.ID, mylog.SeverityWarn, "Dropping component %s with unknown type %q", dto.ID, dto.Type)
		return Component{}, false
	}

	return Component{
		ID:        dto.ID,
		Type:      componentType,
		StartTime: dto.StartTime,
		EndTime:   dto.EndTime,
		Position:  dto.Position,
		TriggerOn: Trigger(dto.TriggerOn),
		Data: ComponentData{
			Title:          dto.Data.Title,
			Text:           dto.Data.Text,
			Animation:      dto.Data.Animation,
			DurationMillis: dto.Data.Duration,
			ProductUID:     dto.Data.ProductUID,
			Product:        dto.Data.Product,
		},
	}, true
}
