package sync

import (
	"prestasync/internal/events"
	"prestasync/internal/services/prestashop"
)

// Source is the PrestaShop webservice capability the engine consumes.
// Implemented by prestashop.Client.
type Source interface {
	ListCategories() ([]prestashop.Category, error)
	GetCategory(id int) (*prestashop.Category, error)
	ListProducts() ([]prestashop.Product, error)
	GetProduct(id int) (*prestashop.Product, error)
	GetOption(id int) (*prestashop.ProductOption, error)
	GetOptionValue(id int) (*prestashop.ProductOptionValue, error)
	GetStock(id int) (*prestashop.StockAvailable, error)
	GetCombination(id int) (*prestashop.Combination, error)
	GetProductImages(productID int) ([]string, error)
	DownloadImage(url string) ([]byte, error)
}

// FileStorage turns raw bytes into a hosted URL. Implemented by
// files.LocalStorage.
type FileStorage interface {
	Upload(filename string, data []byte) (string, error)
}

// Publisher emits sync events. Implemented by events.Publisher and
// events.Noop.
type Publisher interface {
	Publish(event events.Event) error
}
