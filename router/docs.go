package router

// Router - statement routing for one consensus round, main entry point
//
//   peer statement --> defer/proceed decision --+--> deferred pool
//                                               |
//                                               +--> table import batch
//                                                        |
//                                                        v (producers)
//                                               scheduler: fetch content
//                                                        |
//                                                        v
//                                               validate against parent
//                                                        |
//                                                        v
//                                               sign + re-import + gossip
//
// A statement about a candidate the table does not know yet is parked in the
// deferred pool. The Candidate statement that introduces it drains the pool
// and imports everything as one batch. The per-candidate state is one-way:
// once known, statements are imported immediately for the router's lifetime.
