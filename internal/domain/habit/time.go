package habit

import "time"

// timeNow decides what "today" is. Tests replace it.
var timeNow = time.Now
