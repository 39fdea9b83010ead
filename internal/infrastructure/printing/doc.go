// Package printing renders order invoices.
//
// HTML invoices come from an html/template. PDF invoices print that HTML
// through a headless Chrome instance driven by chromedp:
//
//	pdf, err := NewChromedpRenderer(&ChromedpConfig{ExecPath: "/usr/bin/chromium"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	invoices := NewInvoiceRenderer("Storefront", pdf, logger)
//	body, err := invoices.RenderPDF(ctx, inv)
//
// A nil PDFRenderer disables PDF output.
package printing
