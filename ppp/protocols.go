package ppp

// protocolNames maps PPP protocol field values to the names assigned by
// IANA.  Values not listed render as "Unknown".
var protocolNames = map[Protocol]string{
	0x0001: "Padding Protocol",
	0x0003: "ROHC small-CID",
	0x0005: "ROHC large-CID",
	0x0021: "Internet Protocol version 4",
	0x0023: "OSI Network Layer",
	0x0025: "Xerox NS IDP",
	0x0027: "DECnet Phase IV",
	0x0029: "Appletalk",
	0x002b: "Novell IPX",
	0x002d: "Van Jacobson Compressed TCP/IP",
	0x002f: "Van Jacobson Uncompressed TCP/IP",
	0x0031: "Bridging PDU",
	0x0033: "Stream Protocol (ST-II)",
	0x0035: "Banyan Vines",
	0x0037: "reserved (until 1993)",
	0x0039: "AppleTalk EDDP",
	0x003b: "AppleTalk SmartBuffered",
	0x003d: "Multi-Link",
	0x003f: "NETBIOS Framing",
	0x0041: "Cisco Systems",
	0x0043: "Ascom Timeplex",
	0x0045: "Fujitsu Link Backup and Load Balancing (LBLB)",
	0x0047: "DCA Remote Lan",
	0x0049: "Serial Data Transport Protocol (PPP-SDTP)",
	0x004b: "SNA over 802.2",
	0x004d: "SNA",
	0x004f: "IPv6 Header Compression",
	0x0051: "KNX Bridging Data",
	0x0053: "Encryption",
	0x0055: "Individual Link Encryption",
	0x0057: "Internet Protocol version 6",
	0x0059: "PPP Muxing",
	0x005b: "Vendor-Specific Network Protocol (VSNP)",
	0x0061: "RTP IPHC Full Header",
	0x0063: "RTP IPHC Compressed TCP",
	0x0065: "RTP IPHC Compressed Non TCP",
	0x0067: "RTP IPHC Compressed UDP 8",
	0x0069: "RTP IPHC Compressed RTP 8",
	0x006f: "Stampede Bridging",
	0x0071: "Reserved",
	0x0073: "MP+ Protocol",
	0x007d: "reserved (Control Escape)",
	0x007f: "reserved (compression inefficient)",
	0x0081: "Reserved Until 20-Oct-2000",
	0x0083: "Reserved Until 20-Oct-2000",
	0x00c1: "NTCITS IPI",
	0x00cf: "reserved (PPP NLID)",
	0x00fb: "single link compression in multilink",
	0x00fd: "compressed datagram",
	0x00ff: "reserved (compression inefficient)",
	0x0201: "802.1d Hello Packets",
	0x0203: "IBM Source Routing BPDU",
	0x0205: "DEC LANBridge100 Spanning Tree",
	0x0207: "Cisco Discovery Protocol",
	0x0209: "Netcs Twin Routing",
	0x020b: "STP - Scheduled Transfer Protocol",
	0x020d: "EDP - Extreme Discovery Protocol",
	0x0211: "Optical Supervisory Channel Protocol (OSCP)",
	0x0213: "Optical Supervisory Channel Protocol (OSCP)",
	0x0231: "Luxcom",
	0x0233: "Sigma Network Systems",
	0x0235: "Apple Client Server Protocol",
	0x0281: "MPLS Unicast",
	0x0283: "MPLS Multicast",
	0x0285: "IEEE p1284.4 standard - data packets",
	0x0287: "ETSI TETRA Network Protocol Type 1",
	0x0289: "Multichannel Flow Treatment Protocol",
	0x2063: "RTP IPHC Compressed TCP Ntalk Control Protocol",
	0x8021: "Internet Protocol Control Protocol",
	0x802b: "Novell IPX Control Protocol",
	0x802d: "reserved",
	0x802f: "reserved",
	0x8031: "Bridging NCP",
	0x8033: "Stream Protocol Control Protocol",
	0x8035: "Banyan Vines Control Protocol",
	0x8037: "reserved (until 1993)",
	0x8039: "reserved",
	0x803b: "reserved",
	0x803d: "Multi-Link Control Protocol",
	0x803f: "NETBIOS Framing Control Protocol",
	0x8041: "Cisco Systems Control Protocol",
	0x8043: "Ascom Timeplex",
	0x8045: "Fujitsu LBLB Control Protocol",
	0x8047: "DCA Remote Lan Network Control Protocol (RLNCP)",
	0x8049: "Serial Data Control Protocol (PPP-SDCP)",
	0x804b: "SNA over 802.2 Control Protocol",
	0x804d: "SNA Control Protocol",
	0x804f: "IP6 Header Compression Control Protocol",
	0x8051: "KNX Bridging Control Protocol",
	0x8053: "Encryption Control Protocol",
	0x8055: "Individual Link Encryption Control Protocol",
	0x8057: "IPv6 Control Protocol",
	0x8059: "PPP Muxing Control Protocol",
	0x805b: "Vendor-Specific Network Control Protocol (VSNCP)",
	0x806f: "Stampede Bridging Control Protocol",
	0x8071: "Reserved",
	0x8073: "MP+ Control Protocol",
	0x807d: "Not Used - reserved",
	0x8081: "Reserved Until 20-Oct-2000",
	0x8083: "Reserved Until 20-Oct-2000",
	0x80c1: "NTCITS IPI Control Protocol",
	0x80cf: "Not Used - reserved",
	0x80fb: "single link compression in multilink control",
	0x80fd: "Compression Control Protocol",
	0x80ff: "Not Used - reserved",
	0x8207: "Cisco Discovery Protocol Control",
	0x8209: "Netcs Twin Routing",
	0x820b: "STP - Control Protocol",
	0x820d: "EDPCP - Extreme Discovery Protocol Ctrl Prtcl",
	0x8235: "Apple Client Server Protocol Control",
	0x8281: "MPLSCP",
	0x8285: "IEEE p1284.4 standard - Protocol Control",
	0x8287: "ETSI TETRA TNP1 Control Protocol",
	0x8289: "Multichannel Flow Treatment Protocol",
	0xc021: "Link Control Protocol",
	0xc023: "Password Authentication Protocol",
	0xc025: "Link Quality Report",
	0xc027: "Shiva Password Authentication Protocol",
	0xc029: "CallBack Control Protocol (CBCP)",
	0xc02b: "BACP Bandwidth Allocation Control Protocol",
	0xc02d: "BAP",
	0xc05b: "Vendor-Specific Authentication Protocol (VSAP)",
	0xc081: "Container Control Protocol",
	0xc223: "Challenge Handshake Authentication Protocol",
	0xc225: "RSA Authentication Protocol",
	0xc227: "Extensible Authentication Protocol",
	0xc229: "Mitsubishi Security Info Exch Ptcl (SIEP)",
	0xc26f: "Stampede Bridging Authorization Protocol",
	0xc281: "Proprietary Authentication Protocol",
	0xc283: "Proprietary Authentication Protocol",
	0xc481: "Proprietary Node ID Authentication Protocol",
}
