// Package files reads and writes tables on the local file system.
//
// Tables are stored as CSV (header row, no index column) or as an XLSX
// workbook whose first sheet holds the header and rows. The format is chosen
// from the file extension. Manager also stages files produced by other tools
// into place.
//
// Example usage:
//
//	manager := files.NewManager(logger)
//	t, err := manager.ReadTable("data.csv")
//	if err != nil {
//	    return err
//	}
//	err = manager.WriteTable("cleaned_data.csv", t)
package files
