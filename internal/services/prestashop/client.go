package prestashop

import (
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"prestasync/internal/logger"
)

// ErrNotFound is returned when the webservice has no record for the
// requested id. Callers use it to branch, it is not a transport failure.
var ErrNotFound = errors.New("prestashop: record not found")

// APIError is the uniform source-unavailable error: any transport problem,
// auth failure, or unexpected response body surfaces as one of these with
// the upstream message attached when available.
type APIError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("prestashop: %s failed: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("prestashop: %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("prestashop: %s failed with status %d", e.Op, e.Status)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Client is a typed accessor over the PrestaShop webservice. Authentication
// is a static ws_key appended to every call; responses are JSON except the
// image listing, which the webservice only serves as XML.
type Client struct {
	baseURL    string
	wsKey      string
	httpClient *http.Client
	logger     *logger.Logger
}

func NewClient(baseURL, wsKey string, logger *logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		wsKey:   wsKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// ListCategories fetches the category list (summary records).
func (c *Client) ListCategories() ([]Category, error) {
	var resp categoriesResponse
	if err := c.getJSON("list categories", "/api/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// GetCategory fetches one category in full.
func (c *Client) GetCategory(id int) (*Category, error) {
	var resp categoriesResponse
	if err := c.getJSON("get category", "/api/categories/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Categories) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Categories[0], nil
}

// ListProducts fetches the product list (summary records).
func (c *Client) ListProducts() ([]Product, error) {
	var resp productsResponse
	if err := c.getJSON("list products", "/api/products", &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct fetches one product with its association lists.
func (c *Client) GetProduct(id int) (*Product, error) {
	var resp productsResponse
	if err := c.getJSON("get product", "/api/products/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Products) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Products[0], nil
}

// GetOption fetches an attribute group by id.
func (c *Client) GetOption(id int) (*ProductOption, error) {
	var resp productOptionsResponse
	if err := c.getJSON("get option", "/api/product_options/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.ProductOptions) == 0 {
		return nil, ErrNotFound
	}
	return &resp.ProductOptions[0], nil
}

// GetOptionValue fetches an attribute value by id.
func (c *Client) GetOptionValue(id int) (*ProductOptionValue, error) {
	var resp productOptionValuesResponse
	if err := c.getJSON("get option value", "/api/product_option_values/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.ProductOptionValues) == 0 {
		return nil, ErrNotFound
	}
	return &resp.ProductOptionValues[0], nil
}

// GetStock fetches a stock_available record by id.
func (c *Client) GetStock(id int) (*StockAvailable, error) {
	var resp stockAvailablesResponse
	if err := c.getJSON("get stock", "/api/stock_availables/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.StockAvailables) == 0 {
		return nil, ErrNotFound
	}
	return &resp.StockAvailables[0], nil
}

// GetCombination fetches a combination record by id. ErrNotFound here is
// how variant deletion on the source is detected.
func (c *Client) GetCombination(id int) (*Combination, error) {
	var resp combinationsResponse
	if err := c.getJSON("get combination", "/api/combinations/"+strconv.Itoa(id), &resp); err != nil {
		return nil, err
	}
	if len(resp.Combinations) == 0 {
		return nil, ErrNotFound
	}
	return &resp.Combinations[0], nil
}

// imageListing matches the XML the image endpoint returns:
// <prestashop><image><declination id=".." xlink:href=".."/></image></prestashop>
type imageListing struct {
	XMLName xml.Name `xml:"prestashop"`
	Image   struct {
		Declinations []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"declination"`
	} `xml:"image"`
}

// GetProductImages lists the image URLs attached to a product. The
// webservice only exposes this listing as XML.
func (c *Client) GetProductImages(productID int) ([]string, error) {
	body, err := c.getRaw("list product images", "/api/images/products/"+strconv.Itoa(productID), false)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Products without images 404 on this endpoint.
			return nil, nil
		}
		return nil, err
	}

	var listing imageListing
	if err := xml.Unmarshal(body, &listing); err != nil {
		return nil, &APIError{Op: "list product images", Err: err, Message: "malformed image listing"}
	}

	urls := make([]string, 0, len(listing.Image.Declinations))
	for _, declination := range listing.Image.Declinations {
		if declination.Href != "" {
			urls = append(urls, declination.Href)
		}
	}
	return urls, nil
}

// DownloadImage fetches raw image bytes. The ws_key is appended because
// image URLs from the listing point back at the webservice.
func (c *Client) DownloadImage(url string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, &APIError{Op: "download image", Err: err}
	}
	q := req.URL.Query()
	q.Set("ws_key", c.wsKey)
	req.URL.RawQuery = q.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: "download image", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Op: "download image", Status: resp.StatusCode, Message: string(body)}
	}

	return io.ReadAll(resp.Body)
}

func (c *Client) getJSON(op, path string, out interface{}) error {
	body, err := c.getRaw(op, path, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Op: op, Err: err, Message: "malformed response body"}
	}
	return nil
}

func (c *Client) getRaw(op, path string, asJSON bool) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}

	q := req.URL.Query()
	q.Set("ws_key", c.wsKey)
	if asJSON {
		q.Set("output_format", "JSON")
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("GET %s", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{Op: op, Status: resp.StatusCode, Message: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	return body, nil
}
