package extract

// Block types assigned to extracted text lines.
const (
	TypeHeading   = "heading"
	TypeFormula   = "formula"
	TypeListItem  = "list_item"
	TypeParagraph = "paragraph"
)

// Document is written to extracted_content.json and read back by the page
// generator.
type Document struct {
	Title         string `json:"title"`
	SourceFile    string `json:"source_file"`
	Pages         []Page `json:"pages"`
	TotalImages   int    `json:"total_images"`
	TotalTables   int    `json:"total_tables"`
	TotalFormulas int    `json:"total_formulas"`
}

type Page struct {
	PageNumber  int         `json:"page_number"`
	TextBlocks  []TextBlock `json:"text_blocks"`
	Images      []ImageRef  `json:"images"`
	Tables      []TableRef  `json:"tables"`
	HasFormulas bool        `json:"has_formulas"`
}

type TextBlock struct {
	Text     string  `json:"text"`
	Type     string  `json:"type"`
	FontSize float64 `json:"font_size"`
	IsBold   bool    `json:"is_bold"`
}

type ImageRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
}

// Table is written to tables/page<N>_table<M>.json.
type Table struct {
	Headers  []string   `json:"headers"`
	Rows     [][]string `json:"rows"`
	Page     int        `json:"page"`
	RowCount int        `json:"row_count"`
	ColCount int        `json:"col_count"`
}

type TableRef struct {
	Filename string   `json:"filename"`
	Path     string   `json:"path"`
	Headers  []string `json:"headers"`
	RowCount int      `json:"row_count"`
	ColCount int      `json:"col_count"`
}
