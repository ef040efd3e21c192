package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"deeptracex/internal/constants"
	apperrors "deeptracex/internal/errors"
	"deeptracex/internal/validation"
)

const ipAPIFields = "status,message,country,regionName,city,zip,lat,lon,timezone,isp,org,as,query"

// IPInfo is the geolocation record returned for an IP lookup
type IPInfo struct {
	IP       string  `json:"ip"`
	Country  string  `json:"country"`
	Region   string  `json:"region"`
	City     string  `json:"city"`
	Zip      string  `json:"zip"`
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Timezone string  `json:"timezone"`
	ISP      string  `json:"isp"`
	Org      string  `json:"org"`
	AS       string  `json:"as"`
}

type ipAPIResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Country    string  `json:"country"`
	RegionName string  `json:"regionName"`
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	Timezone   string  `json:"timezone"`
	ISP        string  `json:"isp"`
	Org        string  `json:"org"`
	AS         string  `json:"as"`
	Query      string  `json:"query"`
}

// IPProvider looks up IP geolocation through the ip-api.com JSON endpoint
type IPProvider struct {
	httpClient *resty.Client
	baseURL    string
	logger     *logrus.Logger
}

// NewIPProvider creates an IP geolocation provider
func NewIPProvider(baseURL string, logger *logrus.Logger) *IPProvider {
	httpClient := resty.New().
		SetTimeout(constants.ProviderTimeout).
		SetRetryCount(constants.DefaultRetryCount).
		SetRetryWaitTime(constants.DefaultRetryWaitTime)

	return &IPProvider{
		httpClient: httpClient,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Kind identifies the provider family
func (p *IPProvider) Kind() Kind { return KindIP }

// Label is the lookup type recorded in history
func (p *IPProvider) Label() string { return "IP Lookup" }

// Validate rejects anything that does not parse as an IP address
func (p *IPProvider) Validate(query string) error {
	if err := validation.ValidateIP(query); err != nil {
		return &apperrors.ValidationError{Field: "ip", Message: err.Error()}
	}
	return nil
}

// Lookup queries the upstream geolocation service
func (p *IPProvider) Lookup(ctx context.Context, query string) (*Result, error) {
	resp, err := p.httpClient.R().
		SetContext(ctx).
		SetQueryParam("fields", ipAPIFields).
		Get(fmt.Sprintf("%s/json/%s", p.baseURL, query))

	if err != nil {
		return nil, &apperrors.UpstreamError{Provider: string(p.Kind()), Err: err}
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &apperrors.UpstreamError{
			Provider: string(p.Kind()),
			Err:      fmt.Errorf("unexpected status code: %d", resp.StatusCode()),
		}
	}

	var apiResp ipAPIResponse
	if err := json.Unmarshal(resp.Body(), &apiResp); err != nil {
		return nil, &apperrors.UpstreamError{
			Provider: string(p.Kind()),
			Err:      fmt.Errorf("failed to parse response: %w", err),
		}
	}

	// ip-api reports reserved ranges and unroutable addresses as status=fail;
	// that is a clean no-record outcome, not a provider fault.
	if apiResp.Status != "success" {
		p.logger.Debugf("ip-api returned no record for %s: %s", query, apiResp.Message)
		return nil, &apperrors.NotFoundError{Provider: string(p.Kind()), Query: query}
	}

	return &Result{
		Kind:  p.Kind(),
		Label: p.Label(),
		Data: IPInfo{
			IP:       apiResp.Query,
			Country:  apiResp.Country,
			Region:   apiResp.RegionName,
			City:     apiResp.City,
			Zip:      apiResp.Zip,
			Lat:      apiResp.Lat,
			Lon:      apiResp.Lon,
			Timezone: apiResp.Timezone,
			ISP:      apiResp.ISP,
			Org:      apiResp.Org,
			AS:       apiResp.AS,
		},
	}, nil
}
