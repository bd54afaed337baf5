// Copyright 2020 Nick White.
// Use of this source code is governed by the GPLv3
// license that can be found in the LICENSE file.

/*
The rasterdrone package contains tools and functions to turn an image into
a small set of evenly spread points, which can be mapped onto physical
lights, such as the drones of a drone light show. It also contains tools
to export those points and store them; read below for details.

Introduction

An image goes through a few steps to become a set of points. First it is
optionally binarised with Bradley's adaptive thresholding (or Sauvola's),
which copes well with uneven lighting. Then it is optionally shrunk to fit
within a maximum size. Every pixel is then given a brightness, and the
brightest fraction of pixels, set by the percentile, is kept. Finally the
remaining points are reduced to the number wanted, either by farthest
point sampling, which picks the point farthest from all those already
picked each time, or by grid sampling, which keeps only the first point
found in each square cell of a grid.

The rasterdrone command does all of this for an image or a directory of
images:
  rasterdrone -n 200 -size 100 -unit m logo.png

Polarity

Images are either dark marks on a bright background (blackonwhite, the
default) or bright marks on a dark background (whiteonblack). For
blackonwhite images the darkest pixels are treated as the brightest, so
the marks themselves are always what is sampled.

Caching

The internal pipeline keeps the result of each of the two expensive
stages, preprocessing and sampling, along with the parameters used to
make them. A stage is only rerun when its parameters differ from those
last used, and a change in preprocessing always forces sampling to rerun.
Loading a new image bumps a generation counter that is part of the
preprocessing parameters, so a new image always reruns everything. This
is what lets the previewer (rasterdrone -gui) stay responsive when only
the sample count is being changed.

Exporting

Points are normalised into a square of the requested physical size, with
the largest of the width and height of the points filling it, and with y
flipped so that up in the image is up in the world. They can be saved as
CSV, as a PDF layout sheet with a dot for each point, and as a PNG graph.
If every point is in the same place there is no way to normalise them, and
ErrZeroRange is returned.

Storage

Exported files can be saved to a local directory or uploaded to S3, using
the '-c local' or '-c aws' flags. Bucket names are defined in
cloudsettings.go.

  rasterdrone -c aws -o show1 logo.png

Everything uploaded under a name can be downloaded again, removed, or
listed along with the others:

  rasterdrone -c aws -get show1 outdir
  rasterdrone -c aws -rm show1
  rasterdrone -c aws -ls
*/
package rasterdrone
