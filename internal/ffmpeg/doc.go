// Package ffmpeg builds ffmpeg argument lists for the inventory, extract and
// remux steps, runs them through the [Runner] interface, and classifies
// failures.
//
// Builders return arguments without the binary name; [Executor] prepends
// the resolved ffmpeg path. The remux command maps every stream explicitly:
//
//	-i source -i rewritten1 ... -map 0:<video> -map 0:a? -map <n>:s:0 ...
//	-map 0:t? -c copy -map_metadata 0 -map_metadata:s:... -map_chapters 0
//	-disposition:s:<k> ... output
package ffmpeg
