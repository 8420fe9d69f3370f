package sim

import "log/slog"

// LevelTrace is the slog level used for per-cycle simulation traces. It sits
// right above Info so that traces can be filtered out without hiding warnings.
const LevelTrace = slog.LevelInfo + 1
