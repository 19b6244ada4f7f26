package ctags

import (
	"bufio"
	"fmt"
	"io"
)

const (
	FormatHeader = "!_TAG_FILE_FORMAT\t2\t/extended format; --format=1 will not append ;\" to lines/"
	SortedHeader = "!_TAG_FILE_SORTED\t1\t/0=unsorted, 1=sorted, 2=foldcase/"
)

// Write emits the tags header followed by one line per record. Records
// must already be sorted; the column is not part of the line.
func Write(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, FormatHeader)
	fmt.Fprintln(bw, SortedHeader)
	for _, r := range records {
		fmt.Fprintf(bw, "%s\t%s\t:%d\n", r.Name, r.File, r.Line)
	}
	return bw.Flush()
}
