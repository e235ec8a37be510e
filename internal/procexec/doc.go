// Package procexec launches external tools and reports how they ended.
//
// Runner is the narrow seam every adapter (streamlink, ffmpeg, vcsi) goes
// through. The contract separates two failure shapes:
//   - the tool could not be started (binary missing, fork failure): Run
//     returns an error marked services.ErrExternalTool;
//   - the tool ran and exited non-zero: Run returns a Result with
//     Succeeded=false and a nil error.
//
// Result.Output keeps only the last lines of combined stdout/stderr so long
// running captures do not grow memory without bound.
package procexec
