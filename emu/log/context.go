package log

// A LogContextAdder adds fields to every log entry. The emulated machine uses
// it to attach the current program counter to all log lines.
type LogContextAdder interface {
	AddLogContext(z *EntryZ)
}

var contexts []LogContextAdder

// AddContext registers a global log context. It is not safe to call it while
// other goroutines are logging.
func AddContext(c LogContextAdder) {
	contexts = append(contexts, c)
}

// RemoveContext unregisters a log context previously added with AddContext.
func RemoveContext(c LogContextAdder) {
	for i := range contexts {
		if contexts[i] == c {
			contexts = append(contexts[:i], contexts[i+1:]...)
			return
		}
	}
}

func contextFields() map[string]any {
	if len(contexts) == 0 {
		return nil
	}
	var z EntryZ
	for _, c := range contexts {
		c.AddLogContext(&z)
	}
	fields := make(map[string]any, z.zfidx)
	for i := range z.zfbuf[:z.zfidx] {
		fields[z.zfbuf[i].Key] = z.zfbuf[i].Value()
	}
	return fields
}
