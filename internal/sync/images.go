package sync

import (
	"gorm.io/datatypes"

	"prestasync/internal/catalog"
	"prestasync/internal/services/prestashop"
)

// replaceImages downloads the product's source images, re-hosts them, and
// replaces the stored image list wholesale. Products without source images
// keep whatever they have; per-image failures are logged and skipped so
// one dead link never fails the product.
func (r *ProductReconciler) replaceImages(tx catalog.API, product *prestashop.Product, productID, handle string, urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	hosted := r.uploadImages(product, urls, handle)
	if len(hosted) == 0 {
		return nil
	}

	return tx.UpdateProduct(productID, map[string]interface{}{
		"images": datatypes.JSONSlice[string](hosted),
	})
}

func (r *ProductReconciler) uploadImages(product *prestashop.Product, urls []string, handle string) []string {
	filename := handle + ".jpeg"
	hosted := make([]string, 0, len(urls))

	for _, url := range dedupe(urls) {
		data, err := r.source.DownloadImage(url)
		if err != nil {
			r.logger.Warn("product %d: image download failed for %s: %v", product.ID.Int(), url, err)
			continue
		}

		hostedURL, err := r.files.Upload(filename, data)
		if err != nil {
			r.logger.Warn("product %d: image upload failed for %s: %v", product.ID.Int(), url, err)
			continue
		}

		hosted = append(hosted, hostedURL)
	}

	return hosted
}

// dedupe keeps first occurrences in order.
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	unique := make([]string, 0, len(urls))

	for _, url := range urls {
		if _, ok := seen[url]; ok {
			continue
		}
		seen[url] = struct{}{}
		unique = append(unique, url)
	}

	return unique
}
