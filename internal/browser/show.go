package browser

import (
	"fmt"
	"io"

	"github.com/GriffinCanCode/twill/internal/document"
)

// trunc shortens s to length, marking the cut with " ...".
func trunc(s string, length int) string {
	if len(s) > length {
		return s[:length-4] + " ..."
	}
	return s
}

// WriteForms lists the forms of the current page.
func (b *Browser) WriteForms(w io.Writer) {
	for i, f := range b.Forms() {
		WriteForm(w, f, i+1)
	}
}

// WriteForm lists the controls of one form, numbered n.
func WriteForm(w io.Writer, f *document.Form, n int) {
	if label := f.Label(); label != "" {
		fmt.Fprintf(w, "\nForm name=%s (#%d)\n", label, n)
	} else {
		fmt.Fprintf(w, "\nForm #%d\n", n)
	}
	if len(f.Controls) > 0 {
		fmt.Fprintln(w, "## __Name__________________ __Type___ __ID________ __Value__________________")
	}
	for i, c := range f.Controls {
		fmt.Fprintf(w, "%-2d %-24s %-9s %-12s %s\n",
			i+1, trunc(c.Name, 24), trunc(c.RawType, 9), trunc(c.ID, 12), trunc(c.Display(), 40))
	}
	fmt.Fprintln(w)
}

// WriteLinks lists the links of the current page.
func (b *Browser) WriteLinks(w io.Writer) {
	var links []document.Link
	if b.current != nil {
		links = b.current.Links
	}
	if len(links) == 0 {
		fmt.Fprintln(w, "\n** no links **")
		return
	}
	fmt.Fprintf(w, "\nLinks (%d links total):\n\n", len(links))
	for i, l := range links {
		fmt.Fprintf(w, "\t%d. %s ==> %s\n", i+1, trunc(l.Text, 40), l.URL)
	}
	fmt.Fprintln(w)
}

// WriteHistory lists the visited pages.
func (b *Browser) WriteHistory(w io.Writer) {
	if len(b.history) == 0 {
		fmt.Fprintln(w, "\n** no history **")
		return
	}
	fmt.Fprintf(w, "\nHistory (%d pages total):\n\n", len(b.history))
	for i, page := range b.history {
		fmt.Fprintf(w, "\t%d. %s\n", i+1, page.URL)
	}
	fmt.Fprintln(w)
}

// WriteCookies lists the cookies in the jar.
func (b *Browser) WriteCookies(w io.Writer) {
	cookies := b.client.Jar.All()
	if len(cookies) == 0 {
		fmt.Fprintln(w, "\nThere are no cookies in the cookie jar.")
		return
	}
	fmt.Fprintf(w, "\nThere are %d cookie(s) in the cookie jar.\n\n", len(cookies))
	for i, c := range cookies {
		fmt.Fprintf(w, "\t%d. %s=%s for %s%s\n", i+1, c.Name, c.Value, c.Host(), c.Path)
	}
	fmt.Fprintln(w)
}

// SaveCookies writes the cookie jar to path.
func (b *Browser) SaveCookies(path string) error { return b.client.Jar.Save(path) }

// LoadCookies replaces the cookie jar with the cookies stored at path.
func (b *Browser) LoadCookies(path string) error { return b.client.Jar.Load(path) }

// ClearCookies empties the cookie jar.
func (b *Browser) ClearCookies() { b.client.Jar.Clear() }
