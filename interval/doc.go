/*Package interval connects the mask sweep engine to genomic intervals.

  Coverage holds BED-style entries keyed by chromosome, numbered through a
  sam.Header when one is available, and sweeps them as a single ordered
  sequence of Coord tuples; segments never cross chromosomes.  BEDUnion is
  the merged (or inverted) form of a BED file, built from the covered
  segments of such a sweep, and supports fast point queries.
  It assumes every position fits in a PosType, which is currently defined as
  int32 since that's what BAM files are limited to.
*/
package interval
