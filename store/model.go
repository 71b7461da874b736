package store

// Document is the whole persisted state. It is always loaded and saved as
// one unit.
type Document struct {
	KissCount int           `json:"kissCount"`
	Gallery   []GalleryItem `json:"gallery"` // newest first
	Notes     []Note        `json:"notes"`   // newest first
	Todos     []Todo        `json:"todos"`
	Chats     []ChatMessage `json:"chats"`
	Music     []Song        `json:"music"`
}

type GalleryItem struct {
	ID       int64     `json:"id"`
	Image    string    `json:"image"` // data URI or path, stored as given
	Caption  string    `json:"caption"`
	Date     string    `json:"date"`
	Comments []Comment `json:"comments"`
}

type Comment struct {
	Text string `json:"text"`
	Date string `json:"date"`
}

type Note struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	Date string `json:"date"`
}

type Todo struct {
	ID        int64  `json:"id"`
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
	Date      string `json:"date"`
}

type ChatMessage struct {
	ID      int64  `json:"id"`
	Sender  string `json:"sender"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type Song struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	File   string `json:"file"`
	Date   string `json:"date"`
}

// NewDocument returns the empty default document.
func NewDocument() *Document {
	doc := &Document{}
	doc.normalize()
	return doc
}

// normalize replaces nil lists with empty ones so documents written by an
// older schema (e.g. without chats) behave like empty lists and serialise
// as [] rather than null.
func (d *Document) normalize() {
	if d.Gallery == nil {
		d.Gallery = []GalleryItem{}
	}
	for i := range d.Gallery {
		if d.Gallery[i].Comments == nil {
			d.Gallery[i].Comments = []Comment{}
		}
	}
	if d.Notes == nil {
		d.Notes = []Note{}
	}
	if d.Todos == nil {
		d.Todos = []Todo{}
	}
	if d.Chats == nil {
		d.Chats = []ChatMessage{}
	}
	if d.Music == nil {
		d.Music = []Song{}
	}
}

// maxID is the largest id held by any entity in the document.
func (d *Document) maxID() int64 {
	var max int64
	bump := func(id int64) {
		if id > max {
			max = id
		}
	}
	for _, g := range d.Gallery {
		bump(g.ID)
	}
	for _, n := range d.Notes {
		bump(n.ID)
	}
	for _, t := range d.Todos {
		bump(t.ID)
	}
	for _, c := range d.Chats {
		bump(c.ID)
	}
	for _, s := range d.Music {
		bump(s.ID)
	}
	return max
}
