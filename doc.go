// Package oaiharvest harvests Dublin Core records and their linked files from
// an OAI-PMH repository.
//
// This package implements:
//   - ListRecords paging driven by resumption tokens
//   - oai_dc extraction with a configurable namespace table
//   - Streaming file downloads with collision-resistant local names
//   - CSV, XLSX and SQLite exports plus a zip archive of the downloads
//
// Pages are fetched strictly in order because each continuation token is only
// known once the previous page has been read. Files referenced on a page may
// be downloaded concurrently (Config.Concurrency); records keep page order.
// A failed file download is logged and leaves the record without a file name;
// a failed page request or a malformed page ends the run.
//
// Basic usage:
//
//	h, err := oaiharvest.New(oaiharvest.Config{
//		BaseURL:   "http://atom.ape.es.gov.br/;oai",
//		Set:       "_15249",
//		OutputDir: "files",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := h.Run(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(len(res.Records), "records,", res.Downloaded, "files")
package oaiharvest
