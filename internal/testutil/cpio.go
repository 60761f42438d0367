package testutil

import (
	"bytes"
	"fmt"
)

// CpioFile is one entry of a newc archive built by Cpio.
type CpioFile struct {
	Name    string
	Mode    uint32 // including the file type bits
	Content string
}

// Cpio returns a newc ("070701") archive with the given entries followed by
// the trailer, laid out the way rpmbuild writes payloads.
func Cpio(files ...CpioFile) []byte {
	var buf bytes.Buffer
	for i, f := range files {
		writeCpioEntry(&buf, uint32(i+1), f)
	}
	writeCpioEntry(&buf, 0, CpioFile{Name: "TRAILER!!!"})
	return buf.Bytes()
}

func writeCpioEntry(buf *bytes.Buffer, ino uint32, f CpioFile) {
	fields := []uint32{
		ino,
		f.Mode,
		0, 0, // uid, gid
		1, // nlink
		0, // mtime
		uint32(len(f.Content)),
		0, 0, 0, 0, // devices
		uint32(len(f.Name) + 1),
		0, // check
	}
	buf.WriteString("070701")
	for _, v := range fields {
		fmt.Fprintf(buf, "%08X", v)
	}
	buf.WriteString(f.Name)
	buf.WriteByte(0)
	pad4(buf)
	buf.WriteString(f.Content)
	pad4(buf)
}

func pad4(buf *bytes.Buffer) {
	for buf.Len()%4 != 0 {
		buf.WriteByte(0)
	}
}
