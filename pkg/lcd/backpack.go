package lcd

// Backpack decodes the serial backpack protocol into a framebuffer. It lets
// the bench link be exercised without hardware.
type Backpack struct {
	mem     *Memory
	command bool
	addr    byte
}

// NewBackpack creates a decoder drawing into mem.
func NewBackpack(mem *Memory) *Backpack {
	return &Backpack{mem: mem}
}

// Write consumes protocol bytes. It never fails.
func (b *Backpack) Write(p []byte) (int, error) {
	for _, c := range p {
		switch {
		case b.command:
			b.command = false
			b.exec(c)
		case c == CommandPrefix:
			b.command = true
		default:
			b.put(c)
		}
	}
	return len(p), nil
}

func (b *Backpack) exec(c byte) {
	switch {
	case c&CmdSetDDRAM != 0:
		b.addr = c &^ CmdSetDDRAM
	case c == CmdClear:
		_ = b.mem.Clear()
		b.addr = 0
	}
}

func (b *Backpack) put(c byte) {
	for row := Rows - 1; row >= 0; row-- {
		off := rowOffsets[row]
		if b.addr >= off {
			if col := int(b.addr - off); col < len(b.mem.rows[row]) {
				_ = b.mem.WriteText(row, col, string([]byte{c}))
			}
			break
		}
	}
	b.addr++
}
