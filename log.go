package qail

import (
	"github.com/sirupsen/logrus"
)

// log is the package-wide structured logger. Callers embedding this
// module in a larger service should call SetLogger to redirect output
// into their own logrus instance rather than reconfiguring this one in
// place, the same pattern apecloud-myduckserver's pgserver package uses
// via its package-level logrus calls.
var log = logrus.New()

// SetLogger replaces the package-wide logger.
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// Notice is the out-of-band payload delivered for backend 'N' messages,
// mirroring the fields carried by a Server error (spec §7's "notices
// delivered via a separate out-of-band hook").
type Notice struct {
	Severity string
	Code     string
	Message  string
	Detail   string
	Hint     string
}

// NoticeHandler receives notices observed on a connection. The default
// handler (installed by Connect unless WithNoticeHandler replaces it)
// logs the message at Warn level with severity, code, detail and hint as
// fields.
type NoticeHandler func(*Notice)

func defaultNoticeHandler(n *Notice) {
	log.WithFields(logrus.Fields{
		"severity": n.Severity,
		"code":     n.Code,
		"detail":   n.Detail,
		"hint":     n.Hint,
	}).Warn(n.Message)
}
